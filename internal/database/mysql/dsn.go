package mysql

import (
	"net"
	"strconv"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/metadump/internal/database"
)

// buildConfig translates the generic Config into a go-sql-driver Config.
// Port 0 falls back to the engine default.
func buildConfig(cfg *database.Config) *gomysql.Config {
	port := cfg.Port
	if port == 0 {
		port = database.EngineMySQL.DefaultPort()
	}

	mc := gomysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Timeout = cfg.Timeout()
	return mc
}
