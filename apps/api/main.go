package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/campushq/backoffice/apps/api/echo"
	"github.com/campushq/backoffice/core"
	"github.com/campushq/backoffice/core/campus"
	"github.com/campushq/backoffice/core/group"
	"github.com/campushq/backoffice/core/schedule"
	"github.com/campushq/backoffice/core/user"
	emailsvc "github.com/campushq/backoffice/services/email"
	logsvc "github.com/campushq/backoffice/services/logger"
	"github.com/campushq/backoffice/storage/database"
	sqlxrepos "github.com/campushq/backoffice/storage/database/sqlx"
)

func main() {
	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := setUpDB()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()
	sdb := sqlx.NewDb(db, core.Conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(sdb), mailSvc)
	campusRepo := sqlxrepos.NewCampusRepository(sdb)
	campusSvc := campus.NewService(campusRepo)
	groupSvc := group.NewService(sqlxrepos.NewGroupRepository(sdb))
	schedSvc := schedule.NewService(
		sqlxrepos.NewScheduleRepository(sdb),
		campusRepo,
		user.NewTeacherDirectory(usrSvc),
		mailSvc,
		logger,
	)

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Address:     core.Conf.Address(),
			Logger:      logger,
			UserSvc:     usrSvc,
			CampusSvc:   campusSvc,
			GroupSvc:    groupSvc,
			ScheduleSvc: schedSvc,
			SignalShutdown: func() {
				shutdown <- syscall.SIGTERM
			},
		},
	)
	go app.Start()

	// block until a shutdown signal; give outstanding requests a deadline
	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = app.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB() (*sql.DB, error) {
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return nil, err
	}

	db, err := database.Open(core.Conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
