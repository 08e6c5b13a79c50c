package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/campushq/backoffice/core"
	"github.com/campushq/backoffice/core/campus"
	"github.com/campushq/backoffice/core/group"
	"github.com/campushq/backoffice/core/schedule"
	"github.com/campushq/backoffice/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Logger         core.Logger

		UserSvc     user.ServiceInterface
		CampusSvc   campus.ServiceInterface
		GroupSvc    group.ServiceInterface
		ScheduleSvc schedule.ServiceInterface

		// SignalShutdown is called when an integrity error requires the app
		// to gracefully shut down.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	validate := validator.New()
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator(enLocale.Locale())

	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)
	schedule.RegisterValidators(validate, translator)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, translator, s.opts.SignalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc, validate, translator)
	registerCampusAPI(v1, jwt, s.opts.CampusSvc, s.opts.ScheduleSvc, validate)
	registerGroupAPI(v1, jwt, s.opts.GroupSvc, validate)
	registerScheduleAPI(v1, jwt, s.opts.ScheduleSvc, validate)

	// TODO: swagger !!
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
