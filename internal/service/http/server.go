package http

import (
	"github.com/gin-gonic/gin"
	"github.com/reusedev/design-hub/internal/service/http/handler"
	"github.com/reusedev/design-hub/internal/service/http/middleware"
)

func Serve(port string) {
	e := gin.New()
	initRouter(e)
	if err := e.Run(port); err != nil {
		panic(err)
	}
}

func initRouter(e *gin.Engine) {
	e.Use(gin.Recovery())
	e.Use(middleware.RequestLogger())
	v1 := e.Group("/v1")
	img := v1.Group("/img", middleware.RequireUser())
	{
		img.POST("/text-to-image", handler.TextToImage)
		img.POST("/copy-style", handler.CopyStyle)
		img.POST("/change-clothes", handler.ChangeClothes)
		img.POST("/fabric-to-design", handler.FabricToDesign)
		img.POST("/virtual-try-on", handler.VirtualTryOn)
		img.POST("/style-transfer", handler.StyleTransfer)
		img.POST("/change-color", handler.ChangeColor)
		img.POST("/change-background", handler.ChangeBackground)
		img.POST("/remove-background", handler.RemoveBackground)
		img.POST("/partial-modification", handler.PartialModification)
		img.POST("/upscale", handler.Upscale)

		img.GET("/history", handler.History)
		img.GET("/detail", handler.Detail)
		img.POST("/status_refresh", handler.StatusRefresh)
	}
	v1.GET("/task", middleware.RequireUser(), handler.TaskQuery)
}
