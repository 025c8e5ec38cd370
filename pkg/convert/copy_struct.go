package convert

import (
	"github.com/bytedance/sonic"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// StructAssign copies same-named fields from src into dst and returns dst
// StructAssign 把 src 与 dst 同名字段的值复制到 dst 中，返回 dst
func StructAssign(src any, dst any) any {
	_ = copier.Copy(dst, src)
	return dst
}

// StructCopy is StructAssign with the copier error surfaced
// StructCopy 与 StructAssign 相同，但返回复制错误
func StructCopy(dst any, src any) error {
	if err := copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true}); err != nil {
		return errors.Wrap(err, "struct copy failed")
	}
	return nil
}

// StringsToJSON encodes a string slice for storage in a text column; nil encodes as "[]".
// StringsToJSON 将字符串切片编码为 JSON 文本存入文本列，nil 编码为 "[]"
func StringsToJSON(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, err := sonic.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// JSONToStrings decodes a text column written by StringsToJSON; empty input yields an empty slice.
// JSONToStrings 解码 StringsToJSON 写入的文本列，空字符串返回空切片
func JSONToStrings(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	if err := sonic.UnmarshalString(s, &out); err != nil {
		return nil, errors.Wrap(err, "decode string list failed")
	}
	return out, nil
}

// StructToMap converts a struct into a map through its JSON form
// StructToMap 通过 JSON 将结构体转换为 map
func StructToMap(param any, data map[string]interface{}) error {
	b, err := sonic.Marshal(param)
	if err != nil {
		return errors.Wrap(err, "marshal struct failed")
	}
	return sonic.Unmarshal(b, &data)
}
