package dataset

import (
	"bytes"
	"encoding/json"
	"errors"

	kgerrors "github.com/easyops/kgpath/pkg/core/errors"
	"github.com/easyops/kgpath/pkg/kg"
)

// Record 一条对话轮次记录
type Record struct {
	// History 对话历史，按时间顺序
	History []string `json:"history"`
	// RetTriplets 检索到的候选关系路径，越靠后越新
	RetTriplets []kg.RelationPath `json:"ret_triplets"`
	// Label 目标回复
	Label        string     `json:"label"`
	EpisodeID    ID         `json:"episode_id"`
	TurnID       ID         `json:"turn_id"`
	GoldTriplets [][]string `json:"gold_triplets,omitempty"`
}

// ID 记录标识，接受 JSON 数字或字符串，统一保存为文本
type ID string

// UnmarshalJSON 实现 json.Unmarshaler
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return errors.New("id must be a string or a number")
		}
		*id = ID(n.String())
		return nil
	}
}

// ParseRecord 解析一行 JSON 记录；line 仅用于错误信息（从 1 开始）
func ParseRecord(data []byte, line int) (Record, error) {
	var rec Record
	if len(bytes.TrimSpace(data)) == 0 {
		return rec, &kgerrors.MalformedRecordError{Line: line, Err: errors.New("empty line")}
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, &kgerrors.MalformedRecordError{Line: line, Err: err}
	}
	return rec, nil
}

// Validate 检查构建样本所需的字段
func (r Record) Validate(line int) error {
	if len(r.History) == 0 {
		return &kgerrors.EmptyInputError{Field: "history", Line: line}
	}
	if r.Label == "" {
		return &kgerrors.EmptyInputError{Field: "label", Line: line}
	}
	return nil
}
