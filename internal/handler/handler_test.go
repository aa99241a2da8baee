package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"forum-system/config"
	"forum-system/internal/model"
	"forum-system/internal/repository"
	"forum-system/internal/service"
	"forum-system/internal/testutil"
	"forum-system/pkg/jwt"
	"forum-system/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	db       *gorm.DB
	srv      *httptest.Server
	users    *service.UserService
	rooms    *service.RoomService
	msgRepo  *repository.MessageRepository
	mediaDir string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := testutil.NewDB(t)
	client, _ := testutil.NewRedis(t)

	cfg := &config.Config{
		JWT:     config.JWTConfig{Secret: "test-secret", Issuer: "forum-test", ExpireTime: time.Hour},
		Session: config.SessionConfig{CookieName: "sessionid", FlashCookieName: "flashid"},
		Media:   config.MediaConfig{Dir: t.TempDir(), MaxUploadSize: 1 << 20, DefaultAvatar: "avatar.svg"},
	}

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	app := &testApp{
		db:       db,
		users:    service.NewUserService(userRepo, roomRepo, topicRepo, msgRepo),
		rooms:    service.NewRoomService(roomRepo, topicRepo, msgRepo),
		msgRepo:  msgRepo,
		mediaDir: cfg.Media.Dir,
	}

	router, err := NewRouter(Deps{
		Config:   cfg,
		Users:    app.users,
		Rooms:    app.rooms,
		Messages: service.NewMessageService(msgRepo),
		Sessions: service.NewSessionService(jwt.NewJWTService(cfg.JWT), redis.NewSessionStore(client, cfg.JWT.ExpireTime)),
		Flashes:  redis.NewFlashStore(client),
		Avatars:  service.NewAvatarStore(cfg.Media.Dir, cfg.Media.MaxUploadSize),
		Checks: map[string]HealthCheck{
			"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() },
		},
	})
	require.NoError(t, err)

	app.srv = httptest.NewServer(router)
	t.Cleanup(app.srv.Close)
	return app
}

// browser keeps cookies and does not follow redirects
type browser struct {
	t      *testing.T
	app    *testApp
	client *http.Client
}

func (a *testApp) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:   t,
		app: a,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type result struct {
	status   int
	location string
	body     string
}

func (b *browser) do(req *http.Request) result {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return result{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func (b *browser) get(path string) result {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.app.srv.URL+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) result {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.app.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) cookie(name string) string {
	u, _ := url.Parse(b.app.srv.URL)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (b *browser) register(username string) *model.User {
	b.t.Helper()
	res := b.post("/register", url.Values{
		"name":      {username},
		"username":  {username},
		"email":     {username + "@example.com"},
		"password1": {"s3cret-pass"},
		"password2": {"s3cret-pass"},
	})
	require.Equal(b.t, http.StatusFound, res.status, res.body)
	require.Equal(b.t, "/", res.location)

	u, err := b.app.users.GetByEmail(username + "@example.com")
	require.NoError(b.t, err)
	return u
}

func (b *browser) createRoom(topic, name string) *model.Room {
	b.t.Helper()
	res := b.post("/create-room", url.Values{"topic": {topic}, "name": {name}, "description": {"about " + name}})
	require.Equal(b.t, http.StatusFound, res.status, res.body)
	require.Equal(b.t, "/", res.location)

	home, err := b.app.rooms.Home(name)
	require.NoError(b.t, err)
	require.NotEmpty(b.t, home.Rooms)
	return &home.Rooms[0]
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestLogin_UnknownEmailFlashesBoth(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	res := b.post("/login", url.Values{"email": {"Ghost@Example.com"}, "password": {"whatever1"}})

	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, msgUserNotFound)
	assert.Contains(t, res.body, msgLoginFailed)
	assert.Empty(t, b.cookie("sessionid"))

	// flashes are one-shot
	res = b.get("/login")
	assert.NotContains(t, res.body, msgLoginFailed)

	// a blank password still reports the unknown account first
	res = b.post("/login", url.Values{"email": {"ghost@example.com"}, "password": {""}})
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, msgUserNotFound)
	assert.Contains(t, res.body, msgLoginFailed)
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("ada")
	b.get("/logout")

	res := b.post("/login", url.Values{"email": {"ada@example.com"}, "password": {"wrong-pass"}})
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, msgLoginFailed)
	assert.NotContains(t, res.body, msgUserNotFound)
	assert.Empty(t, b.cookie("sessionid"))
}

func TestLogin_HonoursNext(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("ada")
	b.get("/logout")

	res := b.get("/create-room")
	require.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/login?next=%2Fcreate-room", res.location)

	res = b.post("/login", url.Values{"email": {"ADA@example.com"}, "password": {"s3cret-pass"}, "next": {"/create-room"}})
	require.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/create-room", res.location)

	res = b.get("/login")
	assert.Equal(t, http.StatusFound, res.status, "logged in users skip the login page")
	assert.Equal(t, "/", res.location)
}

func TestRegisterLogout_DestroysSession(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("ada")

	token := b.cookie("sessionid")
	require.NotEmpty(t, token)
	assert.Equal(t, http.StatusOK, b.get("/create-room").status)

	res := b.get("/logout")
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/", res.location)
	assert.Empty(t, b.cookie("sessionid"))

	// replaying the old cookie must not log anyone in
	req, err := http.NewRequest(http.MethodGet, app.srv.URL+"/create-room", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: token})
	res = app.browser(t).do(req)
	assert.Equal(t, http.StatusFound, res.status)
	assert.True(t, strings.HasPrefix(res.location, "/login"))
}

func TestRegister_Rejected(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("ada")
	b.get("/logout")

	cases := map[string]url.Values{
		"numeric password": {"username": {"bob"}, "email": {"bob@example.com"}, "password1": {"12345678"}, "password2": {"12345678"}},
		"short password":   {"username": {"bob"}, "email": {"bob@example.com"}, "password1": {"abc"}, "password2": {"abc"}},
		"mismatch":         {"username": {"bob"}, "email": {"bob@example.com"}, "password1": {"s3cret-pass"}, "password2": {"s3cret-pasz"}},
		"bad email":        {"username": {"bob"}, "email": {"bob"}, "password1": {"s3cret-pass"}, "password2": {"s3cret-pass"}},
		"taken email":      {"username": {"bob"}, "email": {"ADA@example.com"}, "password1": {"s3cret-pass"}, "password2": {"s3cret-pass"}},
		"taken username":   {"username": {"Ada"}, "email": {"bob@example.com"}, "password1": {"s3cret-pass"}, "password2": {"s3cret-pass"}},
	}
	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			res := b.post("/register", form)
			assert.Equal(t, http.StatusOK, res.status)
			assert.Contains(t, res.body, msgRegisterError)
			assert.Empty(t, b.cookie("sessionid"))
		})
	}

	_, err := app.users.GetByEmail("bob@example.com")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestLoginRequired(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	for _, path := range []string{"/create-room", "/update-room/1", "/delete-room/1", "/delete-message/1", "/update-user"} {
		res := b.get(path)
		assert.Equal(t, http.StatusFound, res.status, path)
		assert.Equal(t, "/login?next="+url.QueryEscape(path), res.location)
	}

	res := b.post("/room/1", url.Values{"body": {"hi"}})
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/login?next=%2Froom%2F1", res.location)
}

func TestRoomFlow(t *testing.T) {
	app := newTestApp(t)
	host := app.browser(t)
	host.register("host")
	room := host.createRoom("golang", "Gophers")

	guest := app.browser(t)
	guestUser := guest.register("guest")

	before := testutil.CountMessages(t, app.db, room.ID)

	res := guest.post("/room/"+itoa(room.ID), url.Values{"body": {"hello gophers"}})
	require.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/room/"+itoa(room.ID), res.location)

	after := testutil.CountMessages(t, app.db, room.ID)
	assert.Equal(t, before+1, after)

	ids := testutil.ParticipantIDs(t, app.db, room.ID)
	assert.Contains(t, ids, guestUser.ID)

	// anonymous visitors can read
	res = app.browser(t).get("/room/" + itoa(room.ID))
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "hello gophers")
	assert.Contains(t, res.body, "Gophers")

	res = guest.post("/room/"+itoa(room.ID), url.Values{"body": {""}})
	assert.Equal(t, http.StatusFound, res.status)
	after2 := testutil.CountMessages(t, app.db, room.ID)
	assert.Equal(t, after, after2, "empty bodies are dropped")
	assert.Contains(t, guest.get("/room/"+itoa(room.ID)).body, "Message cannot be empty")
}

func TestRoomPages_NotFound(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("ada")

	for _, path := range []string{"/room/999", "/room/abc", "/profile/999", "/update-room/999", "/delete-message/999", "/no-such-page"} {
		res := b.get(path)
		assert.Equal(t, http.StatusNotFound, res.status, path)
		assert.Contains(t, res.body, "Page not found", path)
	}

	res := b.post("/room/999", url.Values{"body": {"hi"}})
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestUpdateAndDeleteRoom_HostOnly(t *testing.T) {
	app := newTestApp(t)
	host := app.browser(t)
	host.register("host")
	room := host.createRoom("golang", "Gophers")
	path := itoa(room.ID)

	other := app.browser(t)
	other.register("other")

	for _, res := range []result{
		other.get("/update-room/" + path),
		other.post("/update-room/"+path, url.Values{"topic": {"x"}, "name": {"Hijacked"}}),
		other.get("/delete-room/" + path),
		other.post("/delete-room/"+path, nil),
	} {
		assert.Equal(t, http.StatusForbidden, res.status)
		assert.Equal(t, refuseRoom, res.body)
	}
	got, err := app.rooms.Get(room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gophers", got.Name)

	res := host.get("/update-room/" + path)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Update study room")

	res = host.post("/update-room/"+path, url.Values{"topic": {"rust"}, "name": {"Crabs"}, "description": {"ownership"}})
	require.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/", res.location)
	got, err = app.rooms.Get(room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Crabs", got.Name)
	assert.Equal(t, "rust", got.Topic.Name)

	res = host.get("/delete-room/" + path)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Crabs")

	res = host.post("/delete-room/"+path, nil)
	require.Equal(t, http.StatusFound, res.status)
	_, err = app.rooms.Get(room.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCreateRoom_RequiresTopicAndName(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.register("host")

	res := b.post("/create-room", url.Values{"topic": {""}, "name": {"orphan"}})
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Topic and room name are required")

	home, err := app.rooms.Home("")
	require.NoError(t, err)
	assert.Zero(t, home.RoomCount)
}

func TestDeleteMessage_AuthorOnly(t *testing.T) {
	app := newTestApp(t)
	host := app.browser(t)
	host.register("host")
	room := host.createRoom("golang", "Gophers")

	guest := app.browser(t)
	guest.register("guest")
	guest.post("/room/"+itoa(room.ID), url.Values{"body": {"mine"}})

	msgs, err := app.msgRepo.ListByRoom(room.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	path := "/delete-message/" + itoa(msgs[0].ID)

	res := host.get(path)
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, refuseMessage, res.body)
	res = host.post(path, nil)
	assert.Equal(t, http.StatusForbidden, res.status)

	res = guest.get(path)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "mine")

	res = guest.post(path, nil)
	require.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/room/"+itoa(room.ID), res.location)

	count := testutil.CountMessages(t, app.db, room.ID)
	assert.Zero(t, count)
}

func TestHomeTopicsActivityProfile(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	user := b.register("ada")
	room := b.createRoom("django", "Django Devs")
	b.createRoom("python", "Snakes")
	b.post("/room/"+itoa(room.ID), url.Values{"body": {"first post"}})

	res := b.get("/?q=DJANGO")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Django Devs")
	assert.NotContains(t, res.body, "Snakes")
	assert.Contains(t, res.body, "1 rooms available")

	res = b.get("/topics?q=pyth")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "python")
	assert.NotContains(t, res.body, "django")

	res = b.get("/activity")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "first post")

	res = app.browser(t).get("/profile/" + itoa(user.ID))
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "@ada")
	assert.Contains(t, res.body, "Django Devs")
}

// onePixelPNG is a valid 1x1 image
var onePixelPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func (b *browser) postMultipart(path string, fields map[string]string, file []byte, filename string) result {
	b.t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(b.t, w.WriteField(k, v))
	}
	if file != nil {
		part, err := w.CreateFormFile("avatar", filename)
		require.NoError(b.t, err)
		_, err = part.Write(file)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, w.Close())

	req, err := http.NewRequest(http.MethodPost, b.app.srv.URL+path, body)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

func TestUpdateUser(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	user := b.register("ada")

	res := b.get("/update-user")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "ada@example.com")

	fields := map[string]string{"name": "Ada Lovelace", "username": "Ada", "email": "Ada@Engine.org", "bio": "notes"}
	res = b.postMultipart("/update-user", fields, onePixelPNG, "me.png")
	require.Equal(t, http.StatusFound, res.status, res.body)
	assert.Equal(t, "/profile/"+itoa(user.ID), res.location)

	got, err := app.users.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@engine.org", got.Email)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.True(t, strings.HasPrefix(got.Avatar, "avatars/"), got.Avatar)

	res = b.get("/media/" + got.Avatar)
	assert.Equal(t, http.StatusOK, res.status)

	res = b.postMultipart("/update-user", fields, []byte("not an image at all"), "me.png")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "Avatar must be")

	// no file keeps the avatar
	res = b.postMultipart("/update-user", map[string]string{"username": "ada", "email": "ada@engine.org"}, nil, "")
	require.Equal(t, http.StatusFound, res.status)
	again, err := app.users.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Avatar, again.Avatar)

	// a new picture replaces the old file
	res = b.postMultipart("/update-user", fields, onePixelPNG, "new.png")
	require.Equal(t, http.StatusFound, res.status)
	replaced, err := app.users.GetByID(user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, got.Avatar, replaced.Avatar)
	assert.Equal(t, []string{filepath.Base(replaced.Avatar)}, app.avatarFiles(t))
}

func (app *testApp) avatarFiles(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(app.mediaDir, "avatars", "*"))
	require.NoError(t, err)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	return names
}

func TestUpdateUser_RejectedUploadIsDiscarded(t *testing.T) {
	app := newTestApp(t)
	app.browser(t).register("taken")
	b := app.browser(t)
	user := b.register("ada")

	fields := map[string]string{"username": "taken", "email": "ada@example.com"}
	res := b.postMultipart("/update-user", fields, onePixelPNG, "me.png")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, msgProfileError)
	assert.Empty(t, app.avatarFiles(t))

	fields = map[string]string{"username": "ada", "email": "taken@example.com"}
	res = b.postMultipart("/update-user", fields, onePixelPNG, "me.png")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Empty(t, app.avatarFiles(t))

	got, err := app.users.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "avatar.svg", got.Avatar)
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ok", Health(map[string]HealthCheck{
		"db": func(context.Context) error { return nil },
	}))
	router.GET("/down", Health(map[string]HealthCheck{
		"db":    func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("refused") },
	}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"db":"ok"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/down", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"down"`)
}

func TestStaticAssets(t *testing.T) {
	app := newTestApp(t)
	res := app.browser(t).get("/static/avatar.svg")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "<svg")
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                 "/",
		"/room/1":          "/room/1",
		"https://evil.com": "/",
		"//evil.com":       "/",
		"/\\evil.com":      "/",
		"room/1":           "/",
		"/create-room?x=1": "/create-room?x=1",
	}
	for in, want := range cases {
		assert.Equal(t, want, safeNext(in), in)
	}
}

func TestSince(t *testing.T) {
	assert.Equal(t, "just now", since(time.Now()))
	assert.Equal(t, "1 minute ago", since(time.Now().Add(-90*time.Second)))
	assert.Equal(t, "3 hours ago", since(time.Now().Add(-3*time.Hour-time.Minute)))
	assert.Equal(t, "2 days ago", since(time.Now().Add(-49*time.Hour)))
}
