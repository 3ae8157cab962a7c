package main

import (
	"log"
	"os"

	"github.com/novalearn/novalearn/core"
	"github.com/novalearn/novalearn/core/auth"
	"github.com/novalearn/novalearn/core/lms"
	inmemkv "github.com/novalearn/novalearn/storage/kv/inmem"
	pgkv "github.com/novalearn/novalearn/storage/kv/postgres"
	sqlitekv "github.com/novalearn/novalearn/storage/kv/sqlite"
)

func main() {
	kv, err := openKV()
	if err != nil {
		log.Fatal(err)
	}
	store, err := lms.NewStore(kv)
	if err != nil {
		log.Fatal(err)
	}

	cli := &commandLine{
		kv:     kv,
		store:  store,
		hasher: auth.NewHasher(core.Conf.PasswordScheme),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			log.Fatal(err)
		}
		os.Exit(2)
	}
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
