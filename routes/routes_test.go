package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/nicolasvargaszz/learn-chinese-game/config/swagger"
	"github.com/nicolasvargaszz/learn-chinese-game/controllers"
	"github.com/nicolasvargaszz/learn-chinese-game/middleware"
	"github.com/nicolasvargaszz/learn-chinese-game/services/battle"
	"github.com/nicolasvargaszz/learn-chinese-game/services/tokens"
	"github.com/nicolasvargaszz/learn-chinese-game/services/vocabulary"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type nopBroadcaster struct{}

func (nopBroadcaster) Attach(string, string)      {}
func (nopBroadcaster) Detach(string, string)      {}
func (nopBroadcaster) ToConn(string, string, any) {}
func (nopBroadcaster) ToRoom(string, string, any) {}

func TestSetupRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := vocabulary.FallbackStore()
	reg := battle.NewRegistry(battle.DefaultSettings(), store, nopBroadcaster{})

	router := gin.New()
	middleware.SetUpMiddleware(router, "test-key", false)
	SetupRoutes(router, store, &controllers.BattleController{Registry: reg},
		tokens.NewManager("secret", time.Hour), middleware.NewRateLimiter(0, 0))

	for _, path := range []string{
		"/ping",
		"/api/v1/words",
		"/api/v1/words/lesson/1",
		"/api/v1/lessons",
		"/api/v1/categories",
		"/api/v1/highscores",
		"/api/v1/battles",
		"/swagger/doc.json",
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/battles/NOPE00", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
