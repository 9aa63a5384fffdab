package session

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStorageEmptyKeys(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	s := NewRedisStorage(client, "")
	defer s.Close()

	assert.Equal(t, DefaultKeyPrefix, s.prefix)

	val, err := s.Get("")
	assert.NoError(t, err)
	assert.Nil(t, val)
	assert.NoError(t, s.Set("", []byte("x"), 0))
	assert.NoError(t, s.Set("id", nil, 0))
	assert.NoError(t, s.Delete(""))
}

func TestFlashesArePoppedOnce(t *testing.T) {
	store := fibersession.New()
	app := fiber.New()

	var first, second []Flash
	app.Get("/", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		sc := NewContext(c, sess, &Options{})
		sc.Flash(FlashSuccess, "Your account has been created! You are now able to login")
		sc.Flash(FlashDanger, "Login Unsuccessful. Please check username and password")
		first = sc.Flashes()
		second = sc.Flashes()
		return sc.Save()
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	require.Len(t, first, 2)
	assert.Equal(t, Flash{Category: FlashSuccess, Message: "Your account has been created! You are now able to login"}, first[0])
	assert.Equal(t, FlashDanger, first[1].Category)
	assert.Empty(t, second)
}
