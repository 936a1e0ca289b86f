package handler

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// ShowHome renders the public home page listing all posts newest first.
func (a *API) ShowHome(c *gin.Context) {
	posts, err := a.posts.ListAll()
	if err != nil {
		log.Printf("list posts failed: %v", err)
		c.HTML(http.StatusInternalServerError, "home.html", gin.H{
			"title": "Nightlight",
			"error": "Could not load posts",
			"year":  time.Now().Year(),
		})
		return
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"title":    "Nightlight",
		"posts":    posts,
		"imageURL": a.imageURL,
		"year":     time.Now().Year(),
	})
}

// ShowPost renders one post's detail page with its description rendered as
// sanitized markdown.
func (a *API) ShowPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.HTML(http.StatusNotFound, "post.html", gin.H{
			"title": "Not Found",
			"error": "Post not found",
		})
		return
	}

	post, err := a.posts.Get(id)
	if err != nil {
		c.HTML(http.StatusNotFound, "post.html", gin.H{
			"title": "Not Found",
			"error": "Post not found",
		})
		return
	}

	c.HTML(http.StatusOK, "post.html", gin.H{
		"title":       post.Title,
		"post":        post,
		"description": renderMarkdown(post.Description),
		"imageURL":    a.imageURL,
		"year":        time.Now().Year(),
	})
}

// renderMarkdown converts markdown to HTML and strips anything the UGC
// policy does not allow.
func renderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(sanitizer.Sanitize(buf.String()))
}
