package storage

import (
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestDSN(t *testing.T) {
	config := Config{
		Driver:   DriverPostgres,
		User:     "a",
		Password: "b",
		Host:     "c",
		Port:     5432,
		DBName:   "d",
	}
	expected := "user=a password=b host=c port=5432 dbname=d sslmode=disable"
	actual := config.DSN()
	require.Equal(t, expected, actual)
}

func TestDSN_SQLite(t *testing.T) {
	config := Config{Driver: DriverSQLite, Path: "chat.db"}
	require.Equal(t, "file:chat.db?_foreign_keys=on", config.DSN())
}

func TestDSN_Memory(t *testing.T) {
	config := Memory("t1")
	require.Equal(t, "file:t1?_foreign_keys=on&cache=shared&mode=memory", config.DSN())
}

func TestDSNWithTimeout(t *testing.T) {
	sqlite := Config{Driver: DriverSQLite, Path: "chat.db"}
	require.Equal(t, "file:chat.db?_foreign_keys=on&_busy_timeout=1500", sqlite.dsnWithTimeout(1500*time.Millisecond))

	pg := Config{Driver: DriverPostgres, User: "a", Password: "b", Host: "c", Port: 5432, DBName: "d"}
	require.Equal(t, "user=a password=b host=c port=5432 dbname=d sslmode=disable connect_timeout=3", pg.dsnWithTimeout(3*time.Second))
}

func TestDSN_Quoting(t *testing.T) {
	config := Config{
		Driver:   DriverPostgres,
		User:     "a",
		Password: `p w'd\x`,
		Host:     "c",
		Port:     5432,
		DBName:   "",
	}
	expected := `user=a password='p w\'d\\x' host=c port=5432 dbname='' sslmode=disable`
	require.Equal(t, expected, config.DSN())
}

func TestDSNWithTimeout_SubSecond(t *testing.T) {
	pg := Config{Driver: DriverPostgres, User: "a", Password: "b", Host: "c", Port: 5432, DBName: "d"}
	require.Equal(t, "user=a password=b host=c port=5432 dbname=d sslmode=disable connect_timeout=1", pg.dsnWithTimeout(200*time.Millisecond))
	require.Equal(t, "user=a password=b host=c port=5432 dbname=d sslmode=disable connect_timeout=1", pg.dsnWithTimeout(0))
	require.Equal(t, "user=a password=b host=c port=5432 dbname=d sslmode=disable connect_timeout=3", pg.dsnWithTimeout(2500*time.Millisecond))
}
