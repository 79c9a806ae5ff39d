package vault

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/yeisme/taskvault/pkg/configs"
	"github.com/yeisme/taskvault/pkg/log"
)

// ImageOptimizer 在入库前压缩过大的图片: 超出边界的等比缩放,
// 再按配置质量重编码. 仅当产物更小才替换原内容.
type ImageOptimizer struct {
	cfg    *configs.VaultConfig
	logger zerolog.Logger
}

func NewImageOptimizer(cfg *configs.VaultConfig) *ImageOptimizer {
	return &ImageOptimizer{cfg: cfg, logger: log.Component("optimizer")}
}

// optimizableMimes 参与优化的图片格式, svg 等矢量格式不处理.
var optimizableMimes = map[string]imaging.Format{
	"image/jpeg": imaging.JPEG,
	"image/png":  imaging.PNG,
}

// Optimize 返回优化后的内容与是否发生了替换.
// 解码失败不阻断上传, 原内容原样入库.
func (o *ImageOptimizer) Optimize(content []byte, mime string) ([]byte, bool) {
	if !o.cfg.OptimizeImages {
		return content, false
	}
	format, ok := optimizableMimes[mime]
	if !ok {
		return content, false
	}

	img, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		o.logger.Warn().Err(err).Str("mime", mime).Msg("image decode failed, storing as-is")
		return content, false
	}

	resized := o.fit(img)

	var buf bytes.Buffer
	opts := []imaging.EncodeOption{}
	if format == imaging.JPEG {
		opts = append(opts, imaging.JPEGQuality(o.cfg.ImageQuality))
	}
	if err := imaging.Encode(&buf, resized, format, opts...); err != nil {
		o.logger.Warn().Err(err).Msg("image encode failed, storing as-is")
		return content, false
	}
	if buf.Len() >= len(content) {
		return content, false
	}
	return buf.Bytes(), true
}

// fit 等比缩放到配置的最大边界内, 不放大小图.
func (o *ImageOptimizer) fit(img image.Image) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= o.cfg.MaxImageWidth && bounds.Dy() <= o.cfg.MaxImageHeight {
		return img
	}
	return imaging.Fit(img, o.cfg.MaxImageWidth, o.cfg.MaxImageHeight, imaging.Lanczos)
}
