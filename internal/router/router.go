package router

import (
	"net/http"

	"Lingo_Community/internal/handler"
	"Lingo_Community/internal/middleware"
	"Lingo_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Services 路由需要的全部业务服务
type Services struct {
	Users      *service.UserService
	Progress   *service.ProgressService
	Community  *service.CommunityService
	Posts      *service.PostService
	Likes      *service.PostLikeService
	Moderation *service.ModerationService
	Flashcards *service.FlashcardService
	Quizzes    *service.QuizService
	Videos     *service.VideoService
}

func InitRouter(s Services) *gin.Engine {
	r := gin.Default()

	user := handler.NewUserHandler(s.Users)
	progress := handler.NewProgressHandler(s.Progress)
	community := handler.NewCommunityHandler(s.Community, s.Users)
	post := handler.NewPostHandler(s.Posts)
	like := handler.NewPostLikeHandler(s.Likes)
	moderation := handler.NewModerationHandler(s.Moderation, s.Users)
	flashcard := handler.NewFlashcardHandler(s.Flashcards)
	quiz := handler.NewQuizHandler(s.Quizzes)
	video := handler.NewVideoHandler(s.Videos)

	identify := middleware.Identify(s.Users)
	admin := middleware.RequireAdmin()

	// 复习进度接口
	progressGroup := r.Group("/progress")
	progressGroup.Use(identify)
	{
		progressGroup.POST("/update", progress.Update)
		progressGroup.GET("/due", progress.Due)
		progressGroup.GET("/card/:cardId", progress.ForCard)
	}

	// 用户相关接口
	userGroup := r.Group("/api/users")
	{
		userGroup.POST("/sync", user.Sync)
		userGroup.GET("/by-clerk-id/:clerkUserId", user.ByClerkID)
		userGroup.GET("/me", identify, user.Me)
		userGroup.POST("/logout", identify, user.Logout)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", user.TokenRefresh)
	}

	// 社区相关接口；join/available/joined 通过 clerkUserId 识别用户
	communityGroup := r.Group("/api/community")
	{
		communityGroup.GET("", community.List)
		communityGroup.POST("/join", community.Join)
		communityGroup.GET("/available", community.Available)
		communityGroup.GET("/joined", community.Joined)
		communityGroup.GET("/:id", community.Get)

		communityGroup.POST("/create", identify, admin, community.Create)
		communityGroup.POST("/:id/leave", identify, community.Leave)
		communityGroup.GET("/:id/requests", identify, community.Requests)
		communityGroup.POST("/:id/members/:userId/approve", identify, community.Approve)
		communityGroup.POST("/:id/members/:userId/reject", identify, community.Reject)
		communityGroup.DELETE("/:id/members/:userId", identify, community.Kick)
	}

	// 论坛接口
	forumGroup := r.Group("/api/forum/posts")
	{
		forumGroup.GET("", post.List)
		forumGroup.GET("/:id", post.Get)
		forumGroup.GET("/:id/comments", post.Comments)

		forumGroup.POST("", identify, post.CreatePost)
		forumGroup.PUT("/:id", identify, post.UpdatePost)
		forumGroup.DELETE("/:id", identify, post.DeletePost)
		forumGroup.POST("/:id/comments", identify, post.AddComment)
		forumGroup.POST("/:id/like", identify, like.Toggle)
		forumGroup.GET("/:id/like-status", identify, like.Status)
		forumGroup.POST("/:id/report", identify, moderation.Report)
	}

	// 论坛管理接口
	adminForum := r.Group("/api/admin/forum")
	adminForum.Use(identify, admin)
	{
		adminForum.GET("/reported/pending", moderation.Pending)
		adminForum.GET("/reported/resolved", moderation.Resolved)
		adminForum.GET("/reported/:id", moderation.ReportedDetail)
		adminForum.GET("/posts/:id/report", moderation.LatestReport)
		adminForum.GET("/posts/:id/reports", moderation.Reports)
		adminForum.GET("/posts/:id/audit", moderation.Audit)
		adminForum.POST("/moderate/:id/approve", moderation.Approve)
		adminForum.POST("/moderate/:id/delete", moderation.Delete)
		adminForum.POST("/moderate/:id/resolve", moderation.Resolve)
	}

	// 闪卡接口
	setGroup := r.Group("/api/flashcard-sets")
	{
		setGroup.GET("", flashcard.ListSets)
		setGroup.GET("/categories/all", flashcard.Categories)
		setGroup.GET("/category/:categoryId", flashcard.SetsByCategory)
		setGroup.GET("/:id", flashcard.GetSet)

		setGroup.POST("/categories", identify, admin, flashcard.CreateCategory)
		setGroup.POST("", identify, flashcard.CreateSet)
		setGroup.PUT("/:id", identify, flashcard.UpdateSet)
		setGroup.POST("/:id/import", identify, flashcard.Import)
	}
	cardGroup := r.Group("/api/flashcards")
	{
		cardGroup.GET("/set/:setId", flashcard.CardsBySet)
		cardGroup.GET("/:id", flashcard.GetCard)

		cardGroup.POST("", identify, flashcard.CreateCard)
		cardGroup.PUT("/:id", identify, flashcard.UpdateCard)
		cardGroup.DELETE("/:id", identify, flashcard.DeleteCard)
	}

	// 测验接口
	quizGroup := r.Group("/api/quiz")
	quizGroup.Use(identify)
	{
		quizGroup.GET("", quiz.List)
		quizGroup.GET("/:id", quiz.Get)
		quizGroup.POST("", admin, quiz.Create)
		quizGroup.POST("/:id/questions", admin, quiz.AddQuestion)
		quizGroup.DELETE("/:id/questions/:questionId", admin, quiz.DeleteQuestion)
		quizGroup.POST("/questions/:questionId/choices", admin, quiz.AddChoice)
		quizGroup.DELETE("/:id", admin, quiz.Delete)
		quizGroup.POST("/:id/attempts", quiz.SubmitAttempt)
		quizGroup.GET("/:id/attempts", quiz.Attempts)
	}

	// 视频接口
	videoGroup := r.Group("/api/videos")
	{
		videoGroup.GET("", video.List)
		videoGroup.GET("/youtube/:youtubeId", video.ByYoutubeID)
		videoGroup.GET("/with-progress", identify, video.WithProgress)
		videoGroup.POST("/mark-watched", identify, video.MarkWatched)
		videoGroup.POST("", identify, admin, video.Create)
		videoGroup.PUT("/:id", identify, admin, video.Update)
		videoGroup.DELETE("/:id", identify, admin, video.Delete)
	}

	playlistGroup := r.Group("/api/playlists")
	playlistGroup.Use(identify)
	{
		playlistGroup.GET("/mine", video.MyPlaylists)
		playlistGroup.GET("/:id", video.GetPlaylist)
		playlistGroup.POST("", video.CreatePlaylist)
		playlistGroup.PUT("/:id", video.RenamePlaylist)
		playlistGroup.DELETE("/:id", video.DeletePlaylist)
		playlistGroup.POST("/:id/videos", video.AddToPlaylist)
		playlistGroup.DELETE("/:id/videos/:videoId", video.RemoveFromPlaylist)
	}

	return r
}

// Handler 外层 chi：request id、real ip、/health 和 CORS，其余交给 gin
func Handler(engine *gin.Engine, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Heartbeat("/health"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "user-id", "X-Sync-Key"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Mount("/", engine)
	return r
}
