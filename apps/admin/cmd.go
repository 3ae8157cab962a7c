package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/novalearn/novalearn/core"
	"github.com/novalearn/novalearn/core/auth"
	"github.com/novalearn/novalearn/core/lms"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	kv     core.KVStore
	store  *lms.Store
	hasher auth.Hasher
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  seed                             - write the demo graph if the store is empty")
	fmt.Println("  migratepasswords                 - back-fill preset passwords on legacy demo users")
	fmt.Println("  adduser -email EMAIL -role ROLE  - create a user; the password will be prompted next")
	fmt.Println("  resetpassword -email EMAIL       - reset a user's password; prompted next")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserRole := addUserCmd.String("role", lms.RoleStudent, "One of: student, instructor, admin, content.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	switch args[1] {
	case "seed":
		if err := lms.SeedIfEmpty(cli.kv); err != nil {
			return err
		}
		fmt.Println("Seed complete.")
		return nil

	case "migratepasswords":
		if err := lms.MigrateUserPasswords(cli.kv); err != nil {
			return err
		}
		fmt.Println("Migration complete.")
		return nil

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.addUser(*addUserEmail, *addUserRole, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) addUser(email, role, pwd string) error {
	data := lms.NewUser{Email: email, Role: role, Password: pwd}
	if err := data.Validate(cli.store); err != nil {
		return err
	}
	hashed, err := cli.hasher.Hash(data.Password)
	if err != nil {
		return err
	}
	data.Password = hashed

	usr, err := cli.store.AddUser(data)
	if err != nil {
		return err
	}
	fmt.Printf("User %s (%s) created.\n", usr.Email, usr.Role)
	return nil
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	usr, err := cli.store.GetUserByEmail(email)
	if err != nil {
		return err
	}
	hashed, err := cli.hasher.Hash(pwd)
	if err != nil {
		return err
	}
	if err = cli.store.UpdateUser(usr.ID, lms.UserPatch{Password: &hashed}); err != nil {
		return err
	}
	fmt.Printf("Password reset for %s.\n", usr.Email)
	return nil
}
