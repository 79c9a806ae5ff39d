package configs

import (
	"github.com/spf13/viper"
)

// AuthConfig 请求者识别配置.
// 保管库按所有者隔离对象，请求者标识从请求头中取得.
type AuthConfig struct {
	// RequesterHeader 携带请求者标识的请求头名称
	RequesterHeader string `mapstructure:"requester_header"`
	// AllowQueryRequester 是否允许通过查询参数传递请求者标识，仅供开发调试
	AllowQueryRequester bool `mapstructure:"allow_query_requester"`
	// AdminRequesters 可查询全局用量的管理员标识列表
	AdminRequesters []string `mapstructure:"admin_requesters"`
}

// IsAdmin 判断请求者是否为管理员.
func (c *AuthConfig) IsAdmin(requester string) bool {
	for _, a := range c.AdminRequesters {
		if a == requester {
			return true
		}
	}

	return false
}

// setDefaults 设置认证配置的默认值.
func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.requester_header", "X-Requester")
	v.SetDefault("auth.allow_query_requester", false)
	v.SetDefault("auth.admin_requesters", []string{})
}
