package waitlist

import (
	"github.com/kuboai/waitlist-api/config/router"
	"github.com/kuboai/waitlist-api/internal/log"
	"github.com/kuboai/waitlist-api/internal/mailer"
	"gorm.io/gorm"
)

type WaitlistServiceFactory interface {
	CreateService() WaitlistService
	CreateController() *router.RESTController
}

type DefaultWaitlistServiceFactory struct {
	db     *gorm.DB
	logger *log.Logger
	cache  Cache
	mail   mailer.Mailer
}

func NewWaitlistServiceFactory(db *gorm.DB, logger *log.Logger, cache Cache, mail mailer.Mailer) WaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{
		db:     db,
		logger: logger,
		cache:  cache,
		mail:   mail,
	}
}

func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	repository := NewWaitlistRepository(f.db)
	return NewWaitlistService(f.logger, repository, f.mail, f.cache, DefaultSendsPerSecond)
}

func (f *DefaultWaitlistServiceFactory) CreateController() *router.RESTController {
	return NewWaitlistController(f.db, f.logger, f.cache, f.mail)
}
