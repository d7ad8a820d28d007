package logger

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// JSON для production, text включается отдельно через SetTextFormatter
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// Get возвращает логгер процесса; до Init (например, в тестах) используется стандартный логгер logrus.
func Get() *logrus.Logger {
	if Log == nil {
		return logrus.StandardLogger()
	}
	return Log
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Get().WithFields(fields)
}

// ForRequest добавляет к записи путь, метод и пользователя запроса.
func ForRequest(c *gin.Context) *logrus.Entry {
	fields := logrus.Fields{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	}
	if userID, ok := c.Get("userID"); ok {
		fields["user_id"] = userID
	}
	return Get().WithFields(fields)
}
