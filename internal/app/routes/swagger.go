package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SwaggerDocURL is where the committed OpenAPI document is served from
const SwaggerDocURL = "/static/swagger.json"

// SetupSwagger serves the Swagger UI for the JSON endpoints
func SetupSwagger(router *gin.Engine) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL(SwaggerDocURL),
		ginSwagger.DefaultModelsExpandDepth(1)))
}
