package handlers

import (
	"RecipeKeeper/internal/client"
	"RecipeKeeper/internal/config"
	"RecipeKeeper/internal/migrate"
	"RecipeKeeper/internal/repo"
	"RecipeKeeper/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// Подмены внешних сервисов: интеграционные тесты гоняют весь стек
// от маршрутизатора до SQLite, наружу не ходят.
type fakeExtractor struct {
	result *client.Extraction
	err    error
}

func (f *fakeExtractor) Extract(_ context.Context, _ []client.Page) (*client.Extraction, error) {
	return f.result, f.err
}

type fakeNutrition struct{}

func (fakeNutrition) Analyze(_ context.Context, _ string, _, _ []string) (*client.Nutrition, error) {
	return &client.Nutrition{Calories: 300, Protein: 10, Carbs: 40, Fat: 8}, nil
}

type fakeConsolidator struct{}

func (fakeConsolidator) Consolidate(_ context.Context, lists [][]string) ([]string, error) {
	var items []string
	for _, l := range lists {
		items = append(items, l...)
	}
	return items, nil
}

type fakeSubmitter struct{}

func (fakeSubmitter) Submit(_ context.Context, _, _ string, _ client.Submission) ([]byte, error) {
	return []byte(`{"id":"remote-1"}`), nil
}

type testApp struct {
	srv       *httptest.Server
	extractor *fakeExtractor
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	db, err := gorm.Open(dial, &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrate.NewReconciler(db, zap.NewNop().Sugar()).Run())

	sugar := zap.NewNop().Sugar()
	cfg := &config.Config{Addr: "localhost:0", AuthSecret: "test-secret", ExternalTimeoutSec: 5}

	userRepo := repo.NewUserRepository(db)
	recipeRepo := repo.NewRecipeRepository(db)
	collectionRepo := repo.NewCollectionRepository(db)
	mealPlanRepo := repo.NewMealPlanRepository(db)
	settingRepo := repo.NewSettingRepository(db)
	auditRepo := repo.NewAuditRepository(db)
	sessionRepo := repo.NewSessionRepository(db)

	extractor := &fakeExtractor{}

	settingsService := service.NewSettingsService(settingRepo)
	auditService := service.NewAuditService(auditRepo, sugar)
	userService := service.NewUserService(userRepo, sessionRepo, settingsService)
	sessionService := service.NewSessionService(sessionRepo, userRepo)
	recipeService := service.NewRecipeService(recipeRepo, settingsService, extractor, fakeNutrition{}, fakeConsolidator{}, fakeSubmitter{})
	collectionService := service.NewCollectionService(collectionRepo, recipeRepo)
	mealPlanService := service.NewMealPlanService(mealPlanRepo, recipeRepo)

	h := NewHandler(cfg, sessionService,
		NewUserHandler(userService, sessionService, settingsService, auditService, sugar, cfg),
		NewAdminHandler(userService, sessionService, auditService, sugar),
		NewRecipeHandler(recipeService, auditService, sugar),
		NewCollectionHandler(collectionService, auditService, sugar),
		NewMealPlanHandler(mealPlanService, auditService, sugar),
		NewSettingsHandler(settingsService, auditService, sugar),
	)

	srv := httptest.NewServer(h.Router)
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, extractor: extractor}
}

// newClient — HTTP-клиент с cookie jar: одна «личность» на клиента.
func (a *testApp) newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (a *testApp) do(t *testing.T, c *http.Client, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// loginAdmin входит сидированным администратором и снимает с него
// принудительную смену пароля.
func (a *testApp) loginAdmin(t *testing.T) *http.Client {
	t.Helper()
	c := a.newClient(t)
	resp := a.do(t, c, http.MethodPost, "/api/user/login", map[string]string{
		"username": migrate.DefaultAdminUsername,
		"password": migrate.DefaultAdminPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = a.do(t, c, http.MethodPost, "/api/user/password", map[string]string{
		"current_password": migrate.DefaultAdminPassword,
		"new_password":     "AdminStrong1!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	return c
}

// createAndLogin заводит пользователя через админский API и входит им.
func (a *testApp) createAndLogin(t *testing.T, admin *http.Client, username, role string) *http.Client {
	t.Helper()
	resp := a.do(t, admin, http.MethodPost, "/api/admin/users", map[string]any{
		"username": username,
		"password": "LongEnough1!",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	c := a.newClient(t)
	resp = a.do(t, c, http.MethodPost, "/api/user/login", map[string]string{
		"username": username,
		"password": "LongEnough1!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	return c
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	resp, err := http.Get(app.srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginFlow(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient(t)

	// неверные данные — единый 401
	resp := app.do(t, c, http.MethodPost, "/api/user/login", map[string]string{
		"username": "admin", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = app.do(t, c, http.MethodPost, "/api/user/login", map[string]string{
		"username": migrate.DefaultAdminUsername, "password": migrate.DefaultAdminPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "admin", body["username"])
	assert.Equal(t, true, body["require_password_change"])

	// cookie поставлена — /me работает
	resp = app.do(t, c, http.MethodGet, "/api/user/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAnonymousRejected(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient(t)

	resp := app.do(t, c, http.MethodGet, "/api/recipes", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = app.do(t, c, http.MethodGet, "/api/user/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestForcedPasswordChangeGate(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient(t)

	// сидированный админ обязан сменить пароль
	resp := app.do(t, c, http.MethodPost, "/api/user/login", map[string]string{
		"username": migrate.DefaultAdminUsername, "password": migrate.DefaultAdminPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// обычные маршруты закрыты отдельным кодом
	resp = app.do(t, c, http.MethodGet, "/api/recipes", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "password_change_required", body["code"])

	// me и смена пароля доступны
	resp = app.do(t, c, http.MethodGet, "/api/user/me", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// слабый новый пароль — причина в ответе
	resp = app.do(t, c, http.MethodPost, "/api/user/password", map[string]string{
		"current_password": migrate.DefaultAdminPassword, "new_password": "weak",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = app.do(t, c, http.MethodPost, "/api/user/password", map[string]string{
		"current_password": migrate.DefaultAdminPassword, "new_password": "AdminStrong1!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// ворота открыты
	resp = app.do(t, c, http.MethodGet, "/api/recipes", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestRecipeOwnershipIsolation(t *testing.T) {
	app := newTestApp(t)
	admin := app.loginAdmin(t)
	alice := app.createAndLogin(t, admin, "alice", "user")
	bob := app.createAndLogin(t, admin, "bob", "user")

	resp := app.do(t, alice, http.MethodPost, "/api/recipes", map[string]any{
		"name":        "Borscht",
		"ingredients": []string{"beets", "cabbage"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	id := created["id"].(string)

	// чужой рецепт неотличим от несуществующего
	resp = app.do(t, bob, http.MethodGet, "/api/recipes/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
	resp = app.do(t, bob, http.MethodDelete, "/api/recipes/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// админ видит всё
	resp = app.do(t, admin, http.MethodGet, "/api/recipes/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestReadOnlyRole(t *testing.T) {
	app := newTestApp(t)
	admin := app.loginAdmin(t)
	reader := app.createAndLogin(t, admin, "reader", "readonly")

	// чтение открыто
	resp := app.do(t, reader, http.MethodGet, "/api/recipes", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// мутации закрыты
	resp = app.do(t, reader, http.MethodPost, "/api/recipes", map[string]any{"name": "Nope"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
	resp = app.do(t, reader, http.MethodPut, "/api/settings", map[string]string{"k": "v"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestPublicShare(t *testing.T) {
	app := newTestApp(t)
	admin := app.loginAdmin(t)
	alice := app.createAndLogin(t, admin, "alice", "user")

	resp := app.do(t, alice, http.MethodPost, "/api/recipes", map[string]any{"name": "Pancakes"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decodeBody(t, resp)["id"].(string)

	resp = app.do(t, alice, http.MethodPost, "/api/recipes/"+id+"/share", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decodeBody(t, resp)["public_token"].(string)
	require.NotEmpty(t, token)

	// публичное чтение без cookie
	anon := app.newClient(t)
	resp = app.do(t, anon, http.MethodGet, "/api/public/recipes/"+token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pub := decodeBody(t, resp)
	assert.Equal(t, "Pancakes", pub["name"])
	assert.NotContains(t, pub, "user_id")

	// случайный токен — 404
	resp = app.do(t, anon, http.MethodGet, "/api/public/recipes/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// после отзыва токен мёртв
	resp = app.do(t, alice, http.MethodDelete, "/api/recipes/"+id+"/share", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = app.do(t, anon, http.MethodGet, "/api/public/recipes/"+token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestSettingsFloorAndAccess(t *testing.T) {
	app := newTestApp(t)
	admin := app.loginAdmin(t)
	alice := app.createAndLogin(t, admin, "alice", "user")

	// обычный пользователь настройки не пишет
	resp := app.do(t, alice, http.MethodPut, "/api/settings", map[string]string{
		"recipe_manager_url": "http://x",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// минимальная длина ниже пола отклоняется целиком
	resp = app.do(t, admin, http.MethodPut, "/api/settings", map[string]string{
		"password_min_length": "6",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = app.do(t, admin, http.MethodPut, "/api/settings", map[string]string{
		"password_min_length": "14",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// публичный маршрут требований отражает действующую политику
	anon := app.newClient(t)
	resp = app.do(t, anon, http.MethodGet, "/api/password-requirements", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reqs := decodeBody(t, resp)
	assert.Equal(t, float64(14), reqs["min_length"])
}

func TestAdminUserManagement(t *testing.T) {
	app := newTestApp(t)
	admin := app.loginAdmin(t)
	alice := app.createAndLogin(t, admin, "alice", "user")

	// не-админ не видит админских маршрутов
	resp := app.do(t, alice, http.MethodGet, "/api/admin/users", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// дубликат логина
	resp = app.do(t, admin, http.MethodPost, "/api/admin/users", map[string]any{
		"username": "alice", "password": "LongEnough1!", "role": "user",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// последний админ защищён
	resp = app.do(t, admin, http.MethodGet, "/api/user/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminID := decodeBody(t, resp)["id"].(string)

	resp = app.do(t, admin, http.MethodDelete, "/api/admin/users/"+adminID, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// со вторым админом самоудаление проходит и завершает сессию
	resp = app.do(t, admin, http.MethodPost, "/api/admin/users", map[string]any{
		"username": "admin2", "password": "LongEnough1!", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = app.do(t, admin, http.MethodDelete, "/api/admin/users/"+adminID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeBody(t, resp)
	assert.Equal(t, true, out["self_logout"])

	resp = app.do(t, admin, http.MethodGet, "/api/user/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuditLogRecordsActions(t *testing.T) {
	app := newTestApp(t)
	admin := app.loginAdmin(t)

	resp := app.do(t, admin, http.MethodGet, "/api/admin/audit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var entries []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))

	actions := make([]string, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e["action"].(string))
	}
	assert.Contains(t, actions, "login")
	assert.Contains(t, actions, "password_change")
}

func TestShoppingListAndMealPlan(t *testing.T) {
	app := newTestApp(t)
	admin := app.loginAdmin(t)
	alice := app.createAndLogin(t, admin, "alice", "user")

	resp := app.do(t, alice, http.MethodPost, "/api/recipes", map[string]any{
		"name": "Omelette", "ingredients": []string{"2 eggs", "butter"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decodeBody(t, resp)["id"].(string)

	resp = app.do(t, alice, http.MethodPost, "/api/shopping-list", map[string]any{
		"recipe_ids": []string{id},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody(t, resp)
	assert.Len(t, list["items"], 2)

	// план питания: валидная дата обязательна
	resp = app.do(t, alice, http.MethodPost, "/api/mealplan", map[string]any{
		"recipe_id": id, "plan_date": "not-a-date",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = app.do(t, alice, http.MethodPost, "/api/mealplan", map[string]any{
		"recipe_id": id, "plan_date": "2026-09-01", "meal_type": "breakfast",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	entry := decodeBody(t, resp)
	assert.Equal(t, "breakfast", entry["meal_type"])

	resp = app.do(t, alice, http.MethodGet, "/api/mealplan", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

// newMultipart собирает multipart-тело с одним файлом и возвращает
// значение Content-Type.
func newMultipart(t *testing.T, buf *bytes.Buffer, field, filename string, data []byte) string {
	t.Helper()
	w := multipart.NewWriter(buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return w.FormDataContentType()
}

func TestImportRecipe(t *testing.T) {
	app := newTestApp(t)
	admin := app.loginAdmin(t)
	alice := app.createAndLogin(t, admin, "alice", "user")
	app.extractor.result = &client.Extraction{
		Name:        "Scanned Pie",
		Ingredients: []string{"apples"},
	}

	var buf bytes.Buffer
	mw := newMultipart(t, &buf, "pages", "page1.jpg", []byte("jpeg-bytes"))

	req, err := http.NewRequest(http.MethodPost, app.srv.URL+"/api/recipes/import", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw)
	resp, err := alice.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	assert.Equal(t, "Scanned Pie", created["name"])

	// исходная страница доступна владельцу
	id := created["id"].(string)
	resp = app.do(t, alice, http.MethodGet, "/api/recipes/"+id+"/pages", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = app.do(t, alice, http.MethodGet, "/api/recipes/"+id+"/pages/0", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}

func TestUpstreamErrorPreserved(t *testing.T) {
	app := newTestApp(t)
	admin := app.loginAdmin(t)
	alice := app.createAndLogin(t, admin, "alice", "user")
	app.extractor.err = &client.UpstreamError{Service: "extractor", Status: 429, Body: []byte(`{"error":"quota exceeded"}`)}

	var buf bytes.Buffer
	mw := newMultipart(t, &buf, "pages", "page1.jpg", []byte("jpeg-bytes"))
	req, err := http.NewRequest(http.MethodPost, app.srv.URL+"/api/recipes/import", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw)
	resp, err := alice.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body["detail"], "quota exceeded")
}

func TestExportMarkdown(t *testing.T) {
	app := newTestApp(t)
	admin := app.loginAdmin(t)
	alice := app.createAndLogin(t, admin, "alice", "user")

	resp := app.do(t, alice, http.MethodPost, "/api/recipes", map[string]any{
		"name":         "Plov",
		"ingredients":  []string{"rice"},
		"instructions": []string{"cook"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decodeBody(t, resp)["id"].(string)

	resp = app.do(t, alice, http.MethodGet, "/api/recipes/"+id+"/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/markdown")
	md, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Plov")
}

func TestCollections(t *testing.T) {
	app := newTestApp(t)
	admin := app.loginAdmin(t)
	alice := app.createAndLogin(t, admin, "alice", "user")

	resp := app.do(t, alice, http.MethodPost, "/api/collections", map[string]string{"name": "Desserts"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	colID := decodeBody(t, resp)["id"].(string)

	resp = app.do(t, alice, http.MethodPost, "/api/recipes", map[string]any{
		"name": "Cake", "collection_id": colID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	recID := decodeBody(t, resp)["id"].(string)

	// удаление подборки отцепляет рецепт, не удаляя его
	resp = app.do(t, alice, http.MethodDelete, "/api/collections/"+colID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = app.do(t, alice, http.MethodGet, "/api/recipes/"+recID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decodeBody(t, resp)
	assert.Nil(t, rec["collection_id"])
}
