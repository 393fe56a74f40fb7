package main

import (
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/inqira/inqira/internal/auth"
	"github.com/inqira/inqira/internal/auth/session"
	"github.com/inqira/inqira/internal/authorization"
	"github.com/inqira/inqira/internal/cache"
	"github.com/inqira/inqira/internal/config"
	"github.com/inqira/inqira/internal/graph"
	"github.com/inqira/inqira/internal/logger"
	"github.com/inqira/inqira/internal/migration"
	"github.com/inqira/inqira/internal/observability"
	"github.com/inqira/inqira/internal/project"
	"github.com/inqira/inqira/internal/questionnaire"
	"github.com/inqira/inqira/internal/server"
	"github.com/inqira/inqira/pkg/db"
)

func main() {
	fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		migration.Module,
		cache.Module,

		auth.Module,
		session.Module,
		authorization.Module,
		project.Module,
		questionnaire.Module,

		graph.Module,
		server.Module,
	).Run()
}

// newSnowflakeNode derives a stable node id from the hostname so replicas
// behind one database do not mint colliding ids.
func newSnowflakeNode() (*snowflake.Node, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "inqira"
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(hostname))
	return snowflake.NewNode(int64(h.Sum32() % 1024))
}
