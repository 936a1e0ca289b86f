package handler

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/nightlight/internal/db"
	"github.com/nightlight/internal/service"
)

// maxUploadFiles 限制一次提交最多携带的图片数量
const maxUploadFiles = 5

// ShowDashboard 渲染后台主面板
func (a *API) ShowDashboard(c *gin.Context) {
	session := sessions.Default(c)
	username := session.Get("username")

	var postCount int64
	a.db.Model(&db.Post{}).Count(&postCount)

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"title":     "Dashboard",
		"username":  username,
		"postCount": postCount,
	})
}

// ShowNewPost 渲染发布新文章的表单
func (a *API) ShowNewPost(c *gin.Context) {
	c.HTML(http.StatusOK, "newpost.html", gin.H{
		"title":    "New Post",
		"maxFiles": maxUploadFiles,
	})
}

// SubmitPost 接收标题、描述和最多五张图片，先持久化文章记录，
// 再并发派生各尺寸变体，全部结束后渲染预览页。
// 文本字段在写入任何文件之前完成校验，避免残留孤儿文件。
func (a *API) SubmitPost(c *gin.Context) {
	title := sanitizeFormField(c.PostForm("title"))
	description := sanitizeFormField(c.PostForm("description"))

	if title == "" {
		a.renderNewPostError(c, http.StatusBadRequest, "Please enter a title", description)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		a.renderNewPostError(c, http.StatusBadRequest, "Invalid upload", description)
		return
	}

	files := form.File["images"]
	if len(files) > maxUploadFiles {
		a.renderNewPostError(c, http.StatusBadRequest, "You can upload at most 5 images", description)
		return
	}

	// 检查文件类型
	for _, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			a.renderNewPostError(c, http.StatusBadRequest, "Only image files are allowed", description)
			return
		}
	}

	// 按上传顺序落盘并生成描述符
	images := make([]db.PostImage, 0, len(files))
	for _, fh := range files {
		img, err := a.images.SaveUpload(fh)
		if err != nil {
			log.Printf("save upload %s failed: %v", fh.Filename, err)
			a.renderNewPostError(c, http.StatusInternalServerError, "Could not store an uploaded image", description)
			return
		}
		images = append(images, img)
	}

	post, err := a.posts.Create(service.PostInput{
		Title:       title,
		Description: description,
		Images:      images,
	})
	if err != nil {
		log.Printf("create post failed: %v", err)
		a.renderNewPostError(c, http.StatusInternalServerError, "Could not save the post", description)
		return
	}

	// 等全部派生结束后才响应；单张失败不影响其余图片
	results := a.images.DeriveAll(c.Request.Context(), post.Images)
	for _, res := range results {
		if res.Err != nil {
			log.Printf("derive variants for %s failed: %v", res.Image.Filename, res.Err)
		}
		if err := a.posts.RecordVariants(res.Image, res.Derived); err != nil {
			log.Printf("record variants for %s failed: %v", res.Image.Filename, err)
		}
	}

	c.HTML(http.StatusOK, "postpreview.html", gin.H{
		"title":       post.Title,
		"post":        post,
		"description": renderMarkdown(post.Description),
		"imageURL":    a.imageURL,
		"year":        time.Now().Year(),
	})
}

func (a *API) renderNewPostError(c *gin.Context, status int, message, description string) {
	c.HTML(status, "newpost.html", gin.H{
		"title":       "New Post",
		"maxFiles":    maxUploadFiles,
		"error":       message,
		"description": description,
	})
}
