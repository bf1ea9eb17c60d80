package router

import (
	"net/http"

	"github.com/carejoa/carejoa-backend/config"
	"github.com/carejoa/carejoa-backend/internal/app/controller"
	"github.com/carejoa/carejoa-backend/internal/app/model"
	"github.com/carejoa/carejoa-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController     *controller.AuthController
	quoteController    *controller.QuoteController
	referralController *controller.ReferralController
	regionalController *controller.RegionalController
	intakeController   *controller.IntakeController
	facilityController *controller.FacilityController
	adminController    *controller.AdminController
	authMiddleware     *middleware.AuthMiddleware
	adminMiddleware    *middleware.AdminMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	quoteController *controller.QuoteController,
	referralController *controller.ReferralController,
	regionalController *controller.RegionalController,
	intakeController *controller.IntakeController,
	facilityController *controller.FacilityController,
	adminController *controller.AdminController,
	authMiddleware *middleware.AuthMiddleware,
	adminMiddleware *middleware.AdminMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		quoteController:    quoteController,
		referralController: referralController,
		regionalController: regionalController,
		intakeController:   intakeController,
		facilityController: facilityController,
		adminController:    adminController,
		authMiddleware:     authMiddleware,
		adminMiddleware:    adminMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "CareJoa API is running",
		})
	})

	api := router.Group("/api")
	{
		// 공개 접수 및 디렉터리
		api.POST("/quote-request", r.quoteController.CreateQuoteRequest)
		api.POST("/partner", r.intakeController.CreatePartner)
		api.POST("/family-care", r.intakeController.CreateFamilyCare)
		api.POST("/calculate-cost", r.intakeController.CalculateCost)
		api.GET("/regions", r.regionalController.Regions)
		api.GET("/regional-centers", r.regionalController.Centers)
		api.GET("/facilities", r.facilityController.List)
		api.GET("/facilities/:id", r.facilityController.Get)

		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authController.Logout)
			auth.GET("/kakao/login", r.authController.KakaoLogin)
			auth.GET("/kakao/callback", r.authController.KakaoCallback)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
			auth.PUT("/user-type", r.authMiddleware.Authenticate(), r.authController.SetUserType)
		}

		customer := api.Group("/customer")
		customer.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireUserType(model.UserTypeCustomer))
		{
			customer.GET("/dashboard", r.quoteController.CustomerDashboard)
			customer.GET("/quote-responses/:quoteId", r.quoteController.QuoteDetail)
			customer.PUT("/quote-requests/:quoteId/status", r.quoteController.CustomerUpdateStatus)
			customer.POST("/responses/:responseId/accept", r.quoteController.AcceptResponse)
			customer.POST("/responses/:responseId/reject", r.quoteController.RejectResponse)
		}

		facility := api.Group("/facility")
		facility.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireUserType(model.UserTypeFacility))
		{
			facility.GET("/dashboard", r.quoteController.FacilityDashboard)
			facility.POST("/send-quote", r.quoteController.SendQuote)
		}

		partner := api.Group("/partner")
		partner.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireUserType(model.UserTypeHospitalManager, model.UserTypeWelfareManager))
		{
			partner.POST("/referral", r.referralController.Submit)
			partner.GET("/referrals", r.referralController.List)
		}

		api.POST("/admin/login", r.adminController.Login)
		api.POST("/admin/logout", r.adminController.Logout)

		admin := api.Group("/admin")
		admin.Use(r.adminMiddleware.RequireAdmin())
		{
			admin.GET("/data", r.adminController.Data)
			admin.POST("/set-region", r.regionalController.SetRegion)
			admin.POST("/toggle-regional-center", r.regionalController.ToggleRegionalCenter)
			admin.PUT("/quote-requests/:quoteId/status", r.quoteController.AdminUpdateStatus)
			admin.PUT("/referrals/:referralId/status", r.referralController.AdminUpdateStatus)
			admin.PUT("/facilities/:id/details", r.facilityController.UpdateDetails)
			admin.POST("/facilities/generate-details", r.facilityController.GenerateDetails)
		}
	}

	return router
}
