package v1

import (
	"github.com/farahadel/connectly/pkg/logger"
	storage "github.com/farahadel/connectly/pkg/redis"
	"github.com/farahadel/connectly/pkg/utils"
	"gorm.io/gorm"
)

var (
	DB        *gorm.DB
	Redis     *storage.RedisClient
	Logger    *logger.Logger
	Validator = utils.NewValidator()
)
