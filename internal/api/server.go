package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/basma-club/clubhub/docs"
	v1 "github.com/basma-club/clubhub/internal/api/handler/v1"
	"github.com/basma-club/clubhub/internal/api/middleware"
	"github.com/basma-club/clubhub/internal/config"
	"github.com/basma-club/clubhub/internal/metrics"
	"github.com/basma-club/clubhub/internal/repository"
	"github.com/basma-club/clubhub/internal/repository/dao"
	"github.com/basma-club/clubhub/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Dependencies are the external adapters the server is wired with.
type Dependencies struct {
	Images   service.ImageStore
	Mailer   service.Mailer
	Registry *prometheus.Registry
}

type Server struct {
	Config  *config.AppConfig
	Router  *gin.Engine
	Hub     *v1.NotificationHub
	Origins *middleware.Origins

	deps    Dependencies
	metrics *metrics.Metrics
	repos   repositories
	auth    *middleware.Authenticator
}

type repositories struct {
	members  *repository.MemberRepository
	posts    *repository.PostRepository
	meetings *repository.MeetingRepository
	points   *repository.PointsRepository
}

type handlers struct {
	auth         *v1.AuthHandler
	members      *v1.MemberHandler
	posts        *v1.PostHandler
	engagement   *v1.EngagementHandler
	meetings     *v1.MeetingHandler
	points       *v1.PointsHandler
	contact      *v1.ContactHandler
	notification *v1.NotificationHub
}

func NewServer(conf *config.AppConfig, db *gorm.DB, deps Dependencies) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:  conf,
		Router:  engine,
		Origins: middleware.NewOrigins(conf.API.AllowedCORSDomains),
		deps:    deps,
		repos: repositories{
			members:  repository.NewMemberRepository(dao.NewMemberDAO(db)),
			posts:    repository.NewPostRepository(dao.NewPostDAO(db)),
			meetings: repository.NewMeetingRepository(dao.NewMeetingDAO(db)),
			points:   repository.NewPointsRepository(dao.NewPointsDAO(db)),
		},
	}
	if deps.Registry != nil && conf.Metrics != nil && conf.Metrics.Enabled {
		s.metrics = metrics.New(deps.Registry)
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler()
	s.Hub = v1.NewNotificationHub(s.Origins.Allowed, service.NewIdentityService(s.repos.members), s.metrics)
	s.MountHandlers(handlers{
		auth:         authHandler,
		members:      s.initMemberHandler(),
		posts:        s.initPostHandler(),
		engagement:   s.initEngagementHandler(),
		meetings:     s.initMeetingHandler(),
		points:       s.initPointsHandler(),
		contact:      s.initContactHandler(),
		notification: s.Hub,
	})

	return s
}

func (s *Server) initAuthHandler() *v1.AuthHandler {
	svc := service.NewAuthService(s.repos.members, service.NewRevocationList())
	identity := service.NewIdentityService(s.repos.members)
	s.auth = middleware.NewAuthenticator(s.Config.API.JWTSigningKey, svc, identity)

	return v1.NewAuthHandler(s.Config.API, svc, identity)
}

func (s *Server) memberService() *service.MemberService {
	return service.NewMemberService(s.repos.members, s.repos.points, s.repos.posts, s.deps.Images)
}

func (s *Server) initMemberHandler() *v1.MemberHandler {
	return v1.NewMemberHandler(s.memberService())
}

func (s *Server) initPostHandler() *v1.PostHandler {
	svc := service.NewPostService(s.repos.posts, s.deps.Images)

	return v1.NewPostHandler(svc, s.memberService())
}

func (s *Server) initEngagementHandler() *v1.EngagementHandler {
	svc := service.NewEngagementService(s.repos.posts, s.metrics)

	return v1.NewEngagementHandler(svc)
}

func (s *Server) initMeetingHandler() *v1.MeetingHandler {
	svc := service.NewMeetingService(s.repos.meetings, s.Hub, s.metrics)

	return v1.NewMeetingHandler(svc)
}

func (s *Server) initPointsHandler() *v1.PointsHandler {
	svc := service.NewPointsService(s.repos.points, s.repos.members, s.metrics)

	return v1.NewPointsHandler(svc)
}

func (s *Server) initContactHandler() *v1.ContactHandler {
	inbox := ""
	if s.Config.Mail != nil {
		inbox = s.Config.Mail.Inbox
	}
	svc := service.NewContactService(s.deps.Mailer, inbox)

	return v1.NewContactHandler(svc)
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.RequestLogger(s.metrics))
	s.Router.Use(middleware.ConfigCORS(s.Origins))
}

func (s *Server) MountHandlers(h handlers) {
	const basePath = "/api/v1"

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/signup", h.auth.HandleSignup)
		public.POST("/auth/login", h.auth.HandleLogin)
		public.GET("/blog", h.posts.HandleBlog)
		public.GET("/blog/:postID", h.posts.HandleBlogPost)
		public.POST("/contact", h.contact.HandleContact)
	}

	authed := s.Router.Group(basePath, s.auth.VerifyJWT())
	{
		authed.POST("/auth/signout", h.auth.HandleSignout)

		authed.GET("/me", h.members.HandleGetMe)
		authed.PATCH("/me", h.members.HandleUpdateMe)
		authed.POST("/me/avatar", h.members.HandleUploadAvatar)

		authed.GET("/feed", h.posts.HandleFeed)
		authed.POST("/feed/posts", h.posts.HandleCreateFeedPost)
		authed.POST("/posts/:postID/like", h.engagement.HandleToggleLike)
		authed.GET("/posts/:postID/engagement", h.engagement.HandleGetEngagement)
		authed.GET("/posts/:postID/comments", h.engagement.HandleGetComments)
		authed.POST("/posts/:postID/comments", h.engagement.HandleAddComment)

		authed.GET("/meetings", h.meetings.HandleListMeetings)
		authed.POST("/meetings", h.meetings.HandleCreateMeeting)
		authed.GET("/meetings/notifications", h.meetings.HandleNotifications)
		authed.PUT("/meetings/:meetingID", h.meetings.HandleUpdateMeeting)
		authed.DELETE("/meetings/:meetingID", h.meetings.HandleDeleteMeeting)
		authed.PUT("/meetings/:meetingID/rsvp", h.meetings.HandleSetRSVP)
		authed.GET("/meetings/:meetingID/attendance", h.meetings.HandleAttendance)

		authed.GET("/leaderboard", h.points.HandleLeaderboard)
		authed.GET("/members", h.members.HandleListMembers)
		authed.GET("/members/:memberID", h.members.HandleGetMember)
		authed.PATCH("/members/:memberID", h.members.HandleUpdateMember)

		authed.GET("/ws/notifications", h.notification.HandleWebSocket)
	}

	admin := s.Router.Group(basePath+"/admin", s.auth.VerifyJWT())
	{
		admin.POST("/points", h.points.HandleGrantPoints)
		admin.GET("/points/history", h.points.HandlePointsHistory)
		admin.GET("/posts", h.posts.HandleAdminListPosts)
		admin.POST("/posts", h.posts.HandleAdminCreatePost)
		admin.PUT("/posts/:postID", h.posts.HandleAdminUpdatePost)
		admin.DELETE("/posts/:postID", h.posts.HandleAdminDeletePost)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	if s.metrics != nil {
		path := s.Config.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		s.Router.GET(path, gin.WrapH(promhttp.HandlerFor(s.deps.Registry, promhttp.HandlerOpts{})))
	}

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Club API"
	docs.SwaggerInfo.Description = "Members, posts, meetings and points of the club."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

// Run serves HTTP and the notification hub until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.Hub.Run(hubCtx)

	srv := &http.Server{
		Addr:              ":" + s.Config.API.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("srv.ListenAndServe -> %w", err)
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown -> %w", err)
	}

	return nil
}
