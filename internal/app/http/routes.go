package routes

import (
	"net/http"

	adminapi "buildtactical/internal/api/admin"
	authapi "buildtactical/internal/api/auth"
	"buildtactical/internal/api/billing"
	filesapi "buildtactical/internal/api/files"
	orgsapi "buildtactical/internal/api/orgs"
	"buildtactical/internal/api/plans"
	"buildtactical/internal/api/polarwebhook"
	proposalsapi "buildtactical/internal/api/proposals"
	reportsapi "buildtactical/internal/api/reports"
	stripewebhooks "buildtactical/internal/api/stripewebhook"
	trackingapi "buildtactical/internal/api/tracking"
	"buildtactical/internal/api/users"
	"buildtactical/internal/app/http/middleware"
	"buildtactical/internal/domain/identity"
	"buildtactical/internal/infra/storage"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, store *storage.Client) {
	// Webhooks take raw provider payloads; keep them outside the
	// sanitizer so signatures still verify.
	r.POST("/webhook", stripewebhooks.StripeWebhook)
	r.POST("/polar-webhook", polarwebhook.PolarWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Landing: signed-in visitors go straight to the dashboard.
	r.GET("/", func(c *gin.Context) {
		if middleware.Authenticated(c) {
			c.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
		c.JSON(200, gin.H{"message": "Build Tactical API"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)
	public.GET("/plans", plans.ListPlans)
	public.GET("/pricing", plans.ListPlans)
	public.GET("/verify", authapi.VerifyEmail)
	public.POST("/resend-verification", authapi.ResendVerification)
	public.POST("/request-password-reset", authapi.RequestPasswordReset)
	public.POST("/reset-password", authapi.ResetPassword)

	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)

	// Authenticated API
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", users.GetCurrentUser)
	auth.POST("/change-password", authapi.ChangePassword)

	auth.GET("/payments", billing.GetPaymentHistory)
	auth.POST("/create-checkout-session", billing.CreateCheckoutSession)
	auth.POST("/create-polar-checkout", billing.CreatePolarCheckout)
	auth.POST("/billing-portal", billing.CreateBillingPortal)
	auth.POST("/activate-trial", billing.ActivateTrial)

	auth.GET("/organizations", orgsapi.ListOrganizations)
	auth.GET("/organizations/:id", orgsapi.GetOrganization)
	auth.POST("/organizations", orgsapi.CreateOrganization)
	auth.PUT("/organizations/:id", orgsapi.UpdateOrganization)
	auth.DELETE("/organizations/:id", orgsapi.DeleteOrganization)
	auth.POST("/organizations/:id/members", orgsapi.AddMember)
	auth.DELETE("/organizations/:id/members/me", orgsapi.LeaveOrganization)

	auth.GET("/projects", trackingapi.ListProjects)
	auth.GET("/projects/:id", trackingapi.GetProject)
	auth.POST("/projects", trackingapi.CreateProject)
	auth.PUT("/projects/:id", trackingapi.UpdateProject)
	auth.DELETE("/projects/:id", trackingapi.DeleteProject)

	auth.POST("/projects/:id/tasks", trackingapi.CreateTask)
	auth.PUT("/tasks/:id", trackingapi.UpdateTask)
	auth.DELETE("/tasks/:id", trackingapi.DeleteTask)

	auth.POST("/projects/:id/expenses", trackingapi.CreateExpense)
	auth.DELETE("/expenses/:id", trackingapi.DeleteExpense)

	files := filesapi.NewHandler(store)
	auth.POST("/files", files.Upload)
	auth.GET("/files", files.List)
	auth.GET("/files/:id/url", files.SignURL)

	auth.POST("/reports/generate", reportsapi.GenerateReport)
	auth.GET("/project-proposals/:id/pdf", reportsapi.ProposalPDF)

	// Entitlement-gated pages. Guards redirect rather than erroring so
	// browser navigation lands somewhere useful.
	dashboard := r.Group("/")
	dashboard.Use(middleware.PageAuthMiddleware(), middleware.RequireEntitlement())
	dashboard.GET("/dashboard", trackingapi.Dashboard)

	proposalPages := r.Group("/")
	proposalPages.Use(middleware.PageAuthMiddleware(), middleware.RequireProposalAccess())
	proposalPages.GET("/project-proposals", proposalsapi.ListProposals)
	proposalPages.POST("/project-proposals", proposalsapi.CreateProposal)
	proposalPages.POST("/project-proposals/:id/decision", proposalsapi.DecideProposal)

	// Admin
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole(identity.RoleAdmin))
	admin.GET("/users", adminapi.ListAllUsers)
	admin.GET("/payments", adminapi.ListAllPayments)
	admin.GET("/stats", adminapi.GetAdminStats)
	admin.GET("/user/:id", adminapi.GetUserDetails)
	admin.PUT("/user/:id/role", adminapi.UpdateUserRole)
	admin.POST("/sync-plans", plans.SyncPlansFromStripe)
}
