package model

import (
	"fmt"
	"strings"
)

// Kind 内容/点赞目标的类型标签
type Kind string

const (
	KindClip    Kind = "clip"
	KindImage   Kind = "image"
	KindText    Kind = "text"
	KindComment Kind = "comment"

	// KindUser 只出现在关注事件里，不能被点赞或评论
	KindUser Kind = "user"
)

// ContentKinds 频道里可发布的全部内容类型，顺序固定
var ContentKinds = []Kind{KindClip, KindImage, KindText}

var kindAliases = map[string]Kind{
	"clip":    KindClip,
	"clips":   KindClip,
	"video":   KindClip,
	"videos":  KindClip,
	"image":   KindImage,
	"images":  KindImage,
	"photo":   KindImage,
	"photos":  KindImage,
	"text":    KindText,
	"texts":   KindText,
	"post":    KindText,
	"posts":   KindText,
	"tweet":   KindText,
	"comment": KindComment,
}

func ParseKind(s string) (Kind, bool) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}

func (k Kind) IsContent() bool {
	return k == KindClip || k == KindImage || k == KindText
}

func (k Kind) IsLikeable() bool {
	return k.IsContent() || k == KindComment
}

// Ref 多态引用：类型标签 + id
type Ref struct {
	Kind Kind  `json:"kind"`
	ID   int64 `json:"id,string"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}
