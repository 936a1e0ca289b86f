package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/nightlight/internal/service"
)

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title": "Log In",
	})
}

// Login 校验用户名和密码，成功后写入会话并跳转到后台
func (a *API) Login(c *gin.Context) {
	name := c.PostForm("name")
	password := c.PostForm("password")

	user, err := a.users.Authenticate(name, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// 统一的错误提示，避免暴露账号是否存在
			c.HTML(http.StatusUnauthorized, "login.html", gin.H{
				"title": "Log In",
				"error": "Incorrect name or password",
				"name":  strings.TrimSpace(name),
			})
			return
		}
		log.Printf("login failed: %v", err)
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"title": "Log In",
			"error": "Something went wrong, please try again",
		})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("username", user.Name)
	if err := session.Save(); err != nil {
		log.Printf("session save failed: %v", err)
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"title": "Log In",
			"error": "Something went wrong, please try again",
		})
		return
	}

	c.Redirect(http.StatusFound, "/dash")
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

// ShowRegisterPage 渲染注册页面
func (a *API) ShowRegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{
		"title": "Register",
	})
}

// Register 校验注册表单并创建账号。校验失败时回显除密码外的原始输入。
func (a *API) Register(c *gin.Context) {
	input := service.RegisterInput{
		Name:            c.PostForm("name"),
		Email:           c.PostForm("email"),
		Password:        c.PostForm("password"),
		PasswordConfirm: c.PostForm("passwordconfirm"),
	}

	_, fieldErrs, err := a.users.Register(input)
	if err != nil {
		log.Printf("register failed: %v", err)
		c.HTML(http.StatusInternalServerError, "register.html", gin.H{
			"title": "Register",
			"error": "Something went wrong, please try again",
			"name":  strings.TrimSpace(input.Name),
			"email": strings.TrimSpace(input.Email),
		})
		return
	}
	if len(fieldErrs) > 0 {
		c.HTML(http.StatusBadRequest, "register.html", gin.H{
			"title":  "Register",
			"errors": fieldErrs,
			"name":   strings.TrimSpace(input.Name),
			"email":  strings.TrimSpace(input.Email),
		})
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

// AuthRequired 是一个简单的认证中间件，未登录时跳转到登录页
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")
		if userID == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
