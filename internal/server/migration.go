package server

import (
	"context"
	"os"

	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/sid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type MigrateServer struct {
	db          *gorm.DB
	log         *log.Logger
	conf        *viper.Viper
	tm          repository.Transaction
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	sid         *sid.Sid
	// exit ends the process once migration is done
	exit func(code int)
}

func NewMigrateServer(
	db *gorm.DB,
	log *log.Logger,
	conf *viper.Viper,
	tm repository.Transaction,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	sid *sid.Sid,
) *MigrateServer {
	return &MigrateServer{
		db:          db,
		log:         log,
		conf:        conf,
		tm:          tm,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		sid:         sid,
		exit:        os.Exit,
	}
}

func (m *MigrateServer) Start(ctx context.Context) error {
	if err := m.AutoMigrate(); err != nil {
		m.log.Error("migrate error", zap.Error(err))
		return err
	}
	m.log.Info("AutoMigrate success")

	if err := m.createSuperuser(ctx); err != nil {
		m.log.Error("create superuser error", zap.Error(err))
		return err
	}

	m.exit(0)
	return nil
}

// AutoMigrate creates or alters every table the server uses.
func (m *MigrateServer) AutoMigrate() error {
	return m.db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Cluster{},
		&model.Node{},
		&model.VirtualMachine{},
		&model.Permission{},
		&model.JobAction{},
		&model.InflightJob{},
		&model.RevokedToken{},
	)
}

// createSuperuser seeds the first account. Nothing happens when the username or email is taken.
func (m *MigrateServer) createSuperuser(ctx context.Context) error {
	username := m.conf.GetString("superuser.username")
	if username == "" {
		username = "admin"
	}
	email := m.conf.GetString("superuser.email")
	if email == "" {
		email = "admin@localhost"
	}
	password := m.conf.GetString("superuser.password")
	if password == "" {
		password = "admin"
	}

	existing, err := m.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		m.log.Info("superuser already exists", zap.String("username", username))
		return nil
	}
	existing, err = m.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		m.log.Info("email already in use, superuser not created", zap.String("email", email))
		return nil
	}

	userId, err := m.sid.GenString()
	if err != nil {
		return err
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	err = m.tm.Transaction(ctx, func(ctx context.Context) error {
		if err := m.userRepo.Create(ctx, &model.User{
			UserId:      userId,
			Username:    username,
			Email:       email,
			Password:    string(hashedPassword),
			IsSuperuser: true,
		}); err != nil {
			return err
		}
		return m.profileRepo.Create(ctx, &model.Profile{
			UserId:      userId,
			DisplayName: username,
			Language:    "en",
		})
	})
	if err != nil {
		return err
	}

	m.log.Info("superuser created",
		zap.String("username", username),
		zap.String("email", email),
		zap.String("user_id", userId))
	return nil
}

func (m *MigrateServer) Stop(ctx context.Context) error {
	m.log.Info("AutoMigrate stop")
	return nil
}
