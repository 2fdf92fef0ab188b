package fx

import (
	"github.com/draftly/post-scheduler/internal/repositories/post"
	"github.com/draftly/post-scheduler/internal/repositories/preference"
	"go.uber.org/fx"
)

var Module = fx.Options(
	post.Module,
	preference.Module,
)
