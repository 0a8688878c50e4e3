package api

import (
	"github.com/Sveder/awesome-web-dev-baseline/app/database"
	"github.com/Sveder/awesome-web-dev-baseline/app/feed"
	"github.com/Sveder/awesome-web-dev-baseline/app/tasks"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
	maxFeedItems    = 50
)

type Handler struct {
	runs         database.RunStore
	scheduler    tasks.TaskSchedulerInterface
	documentPath string
	generator    *feed.Generator
}
