package vault

import "github.com/bytedance/sonic"

// encodeTags 将标签集合序列化为存储用的 JSON 字符串, 空集合存空串.
func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "", nil
	}
	data, err := sonic.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeTags 解析存储的标签 JSON, 解析失败返回空集合.
func decodeTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	if err := sonic.UnmarshalString(raw, &tags); err != nil {
		return nil
	}
	return tags
}
