package db

import (
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Post 定义了文章模型
type Post struct {
	gorm.Model
	PostDate    time.Time `gorm:"not null"`
	Title       string    `gorm:"not null"`
	Description string
	Slug        string
	Author      string
	Images      []PostImage `gorm:"constraint:OnDelete:CASCADE;"`
}

// PostImage 定义文章图片模型。小/中/大三个变体路径仅在对应文件
// 确实生成后才会写入，空字符串表示该尺寸不存在。
type PostImage struct {
	gorm.Model
	PostID       uint
	Filename     string `gorm:"not null"`
	OriginalPath string `gorm:"not null"`
	Width        int
	Height       int
	SmallPath    string
	MediumPath   string
	LargePath    string
}

// SetTitle 设置标题并重新计算 slug。slug 只是标题的纯函数，
// 标题不变时不会被触碰。
func (p *Post) SetTitle(title string) {
	if p.Title == title {
		return
	}
	p.Title = title
	p.Slug = slug.Make(title)
}

// HasSmall 报告小图变体是否已生成。
func (i *PostImage) HasSmall() bool { return i.SmallPath != "" }

// HasMedium 报告中图变体是否已生成。
func (i *PostImage) HasMedium() bool { return i.MediumPath != "" }

// HasLarge 报告大图变体是否已生成。
func (i *PostImage) HasLarge() bool { return i.LargePath != "" }
