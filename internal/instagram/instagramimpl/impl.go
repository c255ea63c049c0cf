package instagramimpl

import (
	"net/http"
	"time"

	"github.com/Davincible/goinsta/v3"
	"github.com/orgball2608/insta-feed-archiver/internal/instagram"
	"github.com/orgball2608/insta-feed-archiver/pkg/config"
	"github.com/orgball2608/insta-feed-archiver/pkg/logger"
	"go.uber.org/fx"
)

type IgImpl struct {
	Client   *goinsta.Instagram
	Config   *config.Config
	Logger   logger.Logger
	username string
	http     *http.Client
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

func New(opts Opts) *IgImpl {
	return &IgImpl{
		Client: goinsta.New(opts.Config.Instagram.Username, opts.Config.Instagram.Password),
		Config: opts.Config,
		Logger: opts.Logger.WithComponent("Instagram"),
		http: &http.Client{
			Timeout: time.Duration(opts.Config.Instagram.RequestTimeout) * time.Second,
		},
	}
}

var _ instagram.Client = (*IgImpl)(nil)

func (ig *IgImpl) Username() string {
	if ig.username != "" {
		return ig.username
	}
	return ig.Config.Instagram.Username
}
