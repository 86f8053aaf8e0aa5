// server/internal/api/routes/routes.go
package routes

import (
	"gatepass-api-server/config"
	"gatepass-api-server/internal/api/handlers"
	"gatepass-api-server/internal/api/middleware"
	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/socket"
	"gatepass-api-server/internal/workflow"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires the handlers onto the route tree.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	engine *workflow.Engine,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	requestHandler := &handlers.RequestHandler{Engine: engine}
	executiveHandler := &handlers.ExecutiveHandler{Engine: engine}
	verifierHandler := &handlers.VerifierHandler{Engine: engine}
	dispatcherHandler := &handlers.DispatcherHandler{Engine: engine}
	receiverHandler := &handlers.ReceiverHandler{Engine: engine}
	reportHandler := &handlers.ReportHandler{Engine: engine}
	adminHandler := &handlers.AdminHandler{Engine: engine}
	userHandler := &handlers.UserHandler{DB: db}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}

		// SuperAdmin-only administration.
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize(models.RoleSuperAdmin))
		{
			users := admin.Group("/users")
			{
				users.POST("/", userHandler.CreateUser)
				users.GET("/", userHandler.GetAllUsers)
				users.DELETE("/:serviceNo", userHandler.DeactivateUser)
			}
			admin.GET("/report", reportHandler.List)
			admin.POST("/requests/:referenceNumber/hide", adminHandler.HideRequest)
			admin.DELETE("/requests/:referenceNumber", adminHandler.DeleteRequest)
		}

		// Requester surface: any authenticated user may submit.
		requests := apiV1.Group("/requests")
		requests.Use(middleware.Authenticate())
		{
			requests.POST("/", requestHandler.Submit)
			requests.GET("/my", requestHandler.ListMine)
			requests.GET("/:referenceNumber", requestHandler.GetByReference)
			requests.POST("/:referenceNumber/cancel", requestHandler.Cancel)
		}

		// Stage surfaces. SuperAdmin is allowed everywhere for oversight.
		executive := apiV1.Group("/executive")
		executive.Use(middleware.Authenticate())
		executive.Use(middleware.Authorize(models.RoleExecutive, models.RoleSuperAdmin))
		{
			executive.GET("/pending", executiveHandler.ListPending)
			executive.GET("/approved", executiveHandler.ListApproved)
			executive.GET("/rejected", executiveHandler.ListRejected)
			executive.POST("/:referenceNumber/approve", executiveHandler.Approve)
			executive.POST("/:referenceNumber/reject", executiveHandler.Reject)
		}

		verify := apiV1.Group("/verify")
		verify.Use(middleware.Authenticate())
		verify.Use(middleware.Authorize(models.RoleVerifier, models.RoleSuperAdmin))
		{
			verify.GET("/pending", verifierHandler.ListPending)
			verify.GET("/approved", verifierHandler.ListApproved)
			verify.GET("/rejected", verifierHandler.ListRejected)
			verify.POST("/:referenceNumber/approve", verifierHandler.Approve)
			verify.POST("/:referenceNumber/reject", verifierHandler.Reject)
		}

		dispatch := apiV1.Group("/dispatch")
		dispatch.Use(middleware.Authenticate())
		dispatch.Use(middleware.Authorize(models.RolePleader, models.RoleDispatcher, models.RoleSuperAdmin))
		{
			dispatch.GET("/pending", dispatcherHandler.ListPending)
			dispatch.GET("/approved", dispatcherHandler.ListApproved)
			dispatch.GET("/rejected", dispatcherHandler.ListRejected)
			dispatch.POST("/:referenceNumber/approve", dispatcherHandler.Approve)
			dispatch.POST("/:referenceNumber/reject", dispatcherHandler.Reject)
		}

		receive := apiV1.Group("/receive")
		receive.Use(middleware.Authenticate())
		receive.Use(middleware.Authorize(models.RoleReceiver, models.RoleSuperAdmin))
		{
			receive.GET("/pending", receiverHandler.ListPending)
			receive.GET("/approved", receiverHandler.ListApproved)
			receive.GET("/rejected", receiverHandler.ListRejected)
			receive.POST("/:referenceNumber/approve", receiverHandler.Approve)
			receive.POST("/:referenceNumber/reject", receiverHandler.Reject)
		}
	}

	return router
}
