package endpoints_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/informator/internal/http/api"
	"github.com/Nixie-Tech-LLC/informator/internal/http/api/admin/endpoints"
	"github.com/Nixie-Tech-LLC/informator/internal/http/api/admin/packets"
	"github.com/Nixie-Tech-LLC/informator/internal/kv"
	"github.com/Nixie-Tech-LLC/informator/internal/model"
	"github.com/Nixie-Tech-LLC/informator/internal/modules"
	"github.com/Nixie-Tech-LLC/informator/internal/registry"
	"github.com/Nixie-Tech-LLC/informator/internal/storage"
)

type harness struct {
	router   *gin.Engine
	kv       *kv.Memory
	registry *registry.Registry
}

func setupRouter(t *testing.T) harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := kv.NewMemory()
	reg := registry.New(mem)
	files := storage.NewLocalStorage(t.TempDir(), "/uploads")

	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin"},
		endpoints.ScreenModule(reg),
		endpoints.ContentModule(modules.NewStore(reg), files),
	)
	return harness{router: r, kv: mem, registry: reg}
}

func (h harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (h harness) connect(t *testing.T, pin string) packets.ScreenResponse {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/admin/screens", map[string]string{"pin": pin})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[packets.ScreenResponse](t, w)
}

func (h harness) addModule(t *testing.T, screenID string, typ model.ModuleType) model.ContentModule {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/admin/screens/"+screenID+"/modules", map[string]string{"type": string(typ)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[packets.ModulesResponse](t, w)
	require.NotNil(t, resp.Added)
	return *resp.Added
}

func TestConnectScreen(t *testing.T) {
	h := setupRouter(t)

	s := h.connect(t, "482913")
	assert.Equal(t, "482913", s.PIN)
	assert.Equal(t, "Screen 1", s.Name)
	assert.Equal(t, model.StatusOnline, s.Status)
	assert.Equal(t, 0, s.ModuleCount)
	assert.NotNil(t, s.Modules)

	w := h.do(t, http.MethodPost, "/api/admin/screens", map[string]string{"pin": "482913"})
	assert.Equal(t, http.StatusConflict, w.Code)

	for _, pin := range []string{"12345", "1234567", "12a456"} {
		w = h.do(t, http.MethodPost, "/api/admin/screens", map[string]string{"pin": pin})
		assert.Equal(t, http.StatusBadRequest, w.Code, pin)
	}

	w = h.do(t, http.MethodPost, "/api/admin/screens", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/api/admin/screens", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]packets.ScreenResponse](t, w), 1)
}

func TestConnectScreen_StorageFailure(t *testing.T) {
	h := setupRouter(t)
	h.kv.FailWrites(true)

	w := h.do(t, http.MethodPost, "/api/admin/screens", map[string]string{"pin": "482913"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "kv:")

	_, ok := h.registry.ByPIN("482913")
	assert.True(t, ok)
}

func TestRenameAndDeleteScreen(t *testing.T) {
	h := setupRouter(t)
	s := h.connect(t, "482913")

	w := h.do(t, http.MethodPut, "/api/admin/screens/"+s.ID, map[string]string{"name": "Холл"})
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]packets.ScreenResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Холл", list[0].Name)

	w = h.do(t, http.MethodPut, "/api/admin/screens/missing", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodDelete, "/api/admin/screens/"+s.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]packets.ScreenResponse](t, w))

	_, ok, _ := h.kv.Get(context.Background(), kv.ScreenKey("482913"))
	assert.False(t, ok)

	w = h.do(t, http.MethodDelete, "/api/admin/screens/"+s.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTemplates(t *testing.T) {
	h := setupRouter(t)

	w := h.do(t, http.MethodGet, "/api/admin/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var templates []struct {
		Type  string          `json:"type"`
		Label string          `json:"label"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &templates))
	require.Len(t, templates, 5)
	assert.Equal(t, "text", templates[0].Type)
	assert.Equal(t, "Текст", templates[0].Label)
	assert.JSONEq(t, `{"title":"Заголовок","content":"Текст сообщения"}`, string(templates[0].Data))
}

func TestModuleLifecycle(t *testing.T) {
	h := setupRouter(t)
	s := h.connect(t, "482913")
	base := "/api/admin/screens/" + s.ID + "/modules"

	text := h.addModule(t, s.ID, model.TypeText)
	clock := h.addModule(t, s.ID, model.TypeTime)

	w := h.do(t, http.MethodPost, base, map[string]string{"type": "marquee"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPut, base+"/"+text.ID, map[string]any{"data": map[string]string{"title": "Внимание", "content": "Собрание"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[packets.ModulesResponse](t, w)
	assert.Equal(t, model.TextData{Title: "Внимание", Content: "Собрание"}, resp.Modules[0].Data)

	w = h.do(t, http.MethodPut, base+"/"+text.ID, map[string]any{"type": "image", "data": map[string]string{"url": "u"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, base+"/reorder", map[string]string{"dragged_id": clock.ID, "target_id": text.ID})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[packets.ModulesResponse](t, w)
	assert.Equal(t, clock.ID, resp.Modules[0].ID)
	assert.Equal(t, text.ID, resp.Modules[1].ID)

	w = h.do(t, http.MethodDelete, base+"/"+clock.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[packets.ModulesResponse](t, w)
	require.Len(t, resp.Modules, 1)
	assert.Equal(t, text.ID, resp.Modules[0].ID)

	raw, ok, _ := h.kv.Get(context.Background(), kv.ScreenKey("482913"))
	require.True(t, ok)
	assert.Contains(t, raw, "Собрание")
}

func TestModuleEndpoints_StaleIDs(t *testing.T) {
	h := setupRouter(t)

	w := h.do(t, http.MethodGet, "/api/admin/screens/missing/modules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[packets.ModulesResponse](t, w).Modules)

	w = h.do(t, http.MethodPost, "/api/admin/screens/missing/modules", map[string]string{"type": "text"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[packets.ModulesResponse](t, w).Added)

	s := h.connect(t, "482913")
	w = h.do(t, http.MethodDelete, "/api/admin/screens/"+s.ID+"/modules/missing", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = h.do(t, http.MethodPost, "/api/admin/screens/"+s.ID+"/modules/missing/items", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestScheduleItems(t *testing.T) {
	h := setupRouter(t)
	s := h.connect(t, "482913")
	schedule := h.addModule(t, s.ID, model.TypeSchedule)
	items := "/api/admin/screens/" + s.ID + "/modules/" + schedule.ID + "/items"

	itemsOf := func(w *httptest.ResponseRecorder) []model.ScheduleItem {
		resp := decode[packets.ModulesResponse](t, w)
		require.Len(t, resp.Modules, 1)
		return resp.Modules[0].Data.(model.ScheduleData).Items
	}

	w := h.do(t, http.MethodPost, items, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := itemsOf(w)
	require.Len(t, got, 3)
	assert.Equal(t, model.ScheduleItem{Time: "12:00", Subject: "Новый предмет", Room: "каб. 101"}, got[2])

	w = h.do(t, http.MethodPatch, items+"/2", map[string]string{"field": "subject", "value": "Физика"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Физика", itemsOf(w)[2].Subject)

	w = h.do(t, http.MethodPatch, items+"/2", map[string]string{"field": "teacher", "value": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPatch, items+"/abc", map[string]string{"field": "room", "value": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodDelete, items+"/0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = itemsOf(w)
	require.Len(t, got, 2)
	assert.Equal(t, "Математика", got[0].Subject)
	assert.Equal(t, "Физика", got[1].Subject)

	w = h.do(t, http.MethodDelete, items+"/9", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, itemsOf(w), 2)

	text := h.addModule(t, s.ID, model.TypeText)
	w = h.do(t, http.MethodPost, "/api/admin/screens/"+s.ID+"/modules/"+text.ID+"/items", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleItems_NoOpEditsSkipPersistence(t *testing.T) {
	h := setupRouter(t)
	s := h.connect(t, "482913")
	schedule := h.addModule(t, s.ID, model.TypeSchedule)
	items := "/api/admin/screens/" + s.ID + "/modules/" + schedule.ID + "/items"

	// any write reaching the store would now answer 500
	h.kv.FailWrites(true)

	w := h.do(t, http.MethodPatch, items+"/9", map[string]string{"field": "room", "value": "каб. 400"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, http.MethodDelete, items+"/-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[packets.ModulesResponse](t, w)
	require.Len(t, resp.Modules, 1)
	assert.Len(t, resp.Modules[0].Data.(model.ScheduleData).Items, 2)
}

func TestUploadImage(t *testing.T) {
	h := setupRouter(t)
	s := h.connect(t, "482913")
	image := h.addModule(t, s.ID, model.TypeImage)
	text := h.addModule(t, s.ID, model.TypeText)

	upload := func(moduleID, filename string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, _ = part.Write([]byte("image bytes"))
		require.NoError(t, mw.WriteField("alt", "Логотип"))
		require.NoError(t, mw.Close())

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/admin/screens/"+s.ID+"/modules/"+moduleID+"/image", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		h.router.ServeHTTP(w, req)
		return w
	}

	w := upload(image.ID, "logo.png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[packets.ModulesResponse](t, w)
	data := resp.Modules[0].Data.(model.ImageData)
	assert.Contains(t, data.URL, "/uploads/logo_")
	assert.Equal(t, "Логотип", data.Alt)

	assert.Equal(t, http.StatusBadRequest, upload(text.ID, "logo.png").Code)
	assert.Equal(t, http.StatusBadRequest, upload(image.ID, "notes.txt").Code)
}
