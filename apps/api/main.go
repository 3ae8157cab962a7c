package main

import (
	"log"
	"os"

	echoapi "github.com/novalearn/novalearn/apps/api/echo"
	"github.com/novalearn/novalearn/core"
	"github.com/novalearn/novalearn/core/auth"
	"github.com/novalearn/novalearn/core/lms"
	emailsvc "github.com/novalearn/novalearn/services/email"
	logsvc "github.com/novalearn/novalearn/services/logger"
	inmemkv "github.com/novalearn/novalearn/storage/kv/inmem"
	pgkv "github.com/novalearn/novalearn/storage/kv/postgres"
	sqlitekv "github.com/novalearn/novalearn/storage/kv/sqlite"
)

func main() {
	std := log.New(os.Stdout, "NOVALEARN : ", log.LstdFlags|log.Lshortfile)

	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	// set up storage
	kv, err := openKV()
	errAndDie(std, err)

	// seed & repair before the store is first read
	errAndDie(std, lms.SeedIfEmpty(kv))
	errAndDie(std, lms.MigrateUserPasswords(kv))

	store, err := lms.NewStore(kv, lms.Options{
		EnforceUniqueEnrollments: core.Conf.EnforceUniqueEnrollments,
		EnforceUniqueSubmissions: core.Conf.EnforceUniqueSubmissions,
	})
	errAndDie(std, err)

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	app := echoapi.NewServer(&echoapi.Options{
		Addr:    core.Conf.Server.Addr,
		Store:   store,
		Session: auth.NewSession(kv),
		Hasher:  auth.NewHasher(core.Conf.PasswordScheme),
		MailSvc: mailSvc,
		Logger:  logger,
	})
	app.Start()
}

func openKV() (core.KVStore, error) {
	switch core.Conf.Storage.Backend {
	case "sqlite":
		return sqlitekv.Open(core.Conf.Storage.SQLitePath)
	case "postgres":
		if err := pgkv.CreateIfNotExist(core.Conf); err != nil {
			return nil, err
		}
		store, err := pgkv.Open(core.Conf)
		if err != nil {
			return nil, err
		}
		return store, pgkv.Migrate(store)
	default:
		return inmemkv.New(), nil
	}
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
