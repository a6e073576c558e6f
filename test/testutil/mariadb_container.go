package testutil

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
)

type MariaDBContainerInfo struct {
	DSN     string
	Cleanup func()
}

func StartMariaDBContainer() (*MariaDBContainerInfo, error) {
	const (
		rootUser     = "root"
		rootPassword = "root"
	)

	addr, purge, err := runContainer("mariadb", &dockertest.RunOptions{
		Repository: "mariadb",
		Tag:        "10.11",
		Env:        []string{fmt.Sprintf("MARIADB_ROOT_PASSWORD=%s", rootPassword)},
	}, "3306/tcp", func(addr string) error {
		conn, err := sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s)/mysql", rootUser, rootPassword, addr))
		if err != nil {
			return err
		}
		defer conn.Close()
		return conn.Ping()
	})
	if err != nil {
		return nil, err
	}

	return &MariaDBContainerInfo{
		DSN:     fmt.Sprintf("%s:%s@tcp(%s)/music?parseTime=true", rootUser, rootPassword, addr),
		Cleanup: purge,
	}, nil
}
