package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
	"github.com/ternarybob/tradedeck/internal/services/layouts"
)

// mockLayoutService implements interfaces.LayoutService for testing
type mockLayoutService struct {
	loadFunc    func(ctx context.Context, userID string, farmID *string) ([]*models.DashboardLayout, error)
	activeFunc  func(ctx context.Context, userID string, farmID *string) (*models.DashboardLayout, error)
	getFunc     func(ctx context.Context, id string) (*models.DashboardLayout, error)
	saveFunc    func(ctx context.Context, layout *models.DashboardLayout, makeDefault bool) (*models.DashboardLayout, error)
	deleteFunc  func(ctx context.Context, id string) error
	addFunc     func(ctx context.Context, layoutID string, widget models.WidgetConfig) (*models.DashboardLayout, error)
	removeFunc  func(ctx context.Context, layoutID, widgetID string) (*models.DashboardLayout, error)
	reorderFunc func(ctx context.Context, layoutID, fromID, toID string) (*models.DashboardLayout, error)
	catalog     []models.WidgetType
}

func (m *mockLayoutService) LoadLayouts(ctx context.Context, userID string, farmID *string) ([]*models.DashboardLayout, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, userID, farmID)
	}
	return nil, nil
}

func (m *mockLayoutService) ActiveLayout(ctx context.Context, userID string, farmID *string) (*models.DashboardLayout, error) {
	if m.activeFunc != nil {
		return m.activeFunc(ctx, userID, farmID)
	}
	return nil, interfaces.ErrNotFound
}

func (m *mockLayoutService) GetLayout(ctx context.Context, id string) (*models.DashboardLayout, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, interfaces.ErrNotFound
}

func (m *mockLayoutService) SaveLayout(ctx context.Context, layout *models.DashboardLayout, makeDefault bool) (*models.DashboardLayout, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, layout, makeDefault)
	}
	return layout, nil
}

func (m *mockLayoutService) SetDefault(ctx context.Context, id string) (*models.DashboardLayout, error) {
	return nil, interfaces.ErrNotFound
}

func (m *mockLayoutService) DeleteLayout(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockLayoutService) AddWidget(ctx context.Context, layoutID string, widget models.WidgetConfig) (*models.DashboardLayout, error) {
	if m.addFunc != nil {
		return m.addFunc(ctx, layoutID, widget)
	}
	return nil, interfaces.ErrNotFound
}

func (m *mockLayoutService) RemoveWidget(ctx context.Context, layoutID, widgetID string) (*models.DashboardLayout, error) {
	if m.removeFunc != nil {
		return m.removeFunc(ctx, layoutID, widgetID)
	}
	return nil, interfaces.ErrNotFound
}

func (m *mockLayoutService) ReorderWidget(ctx context.Context, layoutID, fromID, toID string) (*models.DashboardLayout, error) {
	if m.reorderFunc != nil {
		return m.reorderFunc(ctx, layoutID, fromID, toID)
	}
	return nil, interfaces.ErrNotFound
}

func (m *mockLayoutService) Catalog() []models.WidgetType {
	return m.catalog
}

func newLayoutHandler(m *mockLayoutService) *LayoutHandler {
	return NewLayoutHandler(m, arbor.NewLogger())
}

func TestListLayoutsScope(t *testing.T) {
	var gotUser string
	var gotFarm *string
	mock := &mockLayoutService{
		loadFunc: func(ctx context.Context, userID string, farmID *string) ([]*models.DashboardLayout, error) {
			gotUser, gotFarm = userID, farmID
			return []*models.DashboardLayout{
				{ID: models.DefaultLayoutID, Name: "Default", IsDefault: true, UserID: userID},
			}, nil
		},
	}
	handler := newLayoutHandler(mock)

	req := httptest.NewRequest("GET", "/api/layouts?farm_id=farm-7", nil)
	req.Header.Set("X-User-ID", "bob")
	rec := httptest.NewRecorder()
	handler.ListHandler(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "bob", gotUser)
	require.NotNil(t, gotFarm)
	assert.Equal(t, "farm-7", *gotFarm)
}

func TestListLayoutsDefaultScope(t *testing.T) {
	var gotUser string
	mock := &mockLayoutService{
		loadFunc: func(ctx context.Context, userID string, farmID *string) ([]*models.DashboardLayout, error) {
			gotUser = userID
			return nil, nil
		},
	}
	handler := newLayoutHandler(mock)

	req := httptest.NewRequest("GET", "/api/layouts", nil)
	rec := httptest.NewRecorder()
	handler.ListHandler(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, DefaultUserID, gotUser)
	// Nil listing serves [] rather than null
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestActiveLayoutNotFound(t *testing.T) {
	handler := newLayoutHandler(&mockLayoutService{})

	req := httptest.NewRequest("GET", "/api/layouts/active", nil)
	rec := httptest.NewRecorder()
	handler.ActiveHandler(rec, req)

	assert.Equal(t, 404, rec.Code)
}

func TestSaveLayout(t *testing.T) {
	var savedDefault bool
	mock := &mockLayoutService{
		saveFunc: func(ctx context.Context, layout *models.DashboardLayout, makeDefault bool) (*models.DashboardLayout, error) {
			savedDefault = makeDefault
			layout.ID = "layout_1"
			return layout, nil
		},
	}
	handler := newLayoutHandler(mock)

	body := `{"name":"Trading View","widgets":[{"id":"w1","type":"queue-stats"}],"make_default":true}`
	req := httptest.NewRequest("POST", "/api/layouts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ListHandler(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.True(t, savedDefault)

	var saved models.DashboardLayout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, "layout_1", saved.ID)
	assert.Equal(t, "Trading View", saved.Name)
}

func TestSaveLayoutRejectsMissingName(t *testing.T) {
	handler := newLayoutHandler(&mockLayoutService{})

	body := `{"widgets":[]}`
	req := httptest.NewRequest("POST", "/api/layouts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ListHandler(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestDeleteProtectedLayout(t *testing.T) {
	mock := &mockLayoutService{
		deleteFunc: func(ctx context.Context, id string) error {
			return layouts.ErrProtectedLayout
		},
	}
	handler := newLayoutHandler(mock)

	req := httptest.NewRequest("DELETE", "/api/layouts/default", nil)
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	assert.Equal(t, 409, rec.Code)
}

func TestAddWidgetUnknownType(t *testing.T) {
	mock := &mockLayoutService{
		addFunc: func(ctx context.Context, layoutID string, widget models.WidgetConfig) (*models.DashboardLayout, error) {
			return nil, layouts.ErrUnknownWidgetType
		},
	}
	handler := newLayoutHandler(mock)

	body := `{"type":"time-machine"}`
	req := httptest.NewRequest("POST", "/api/layouts/layout_1/widgets", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestReorderWidget(t *testing.T) {
	var gotFrom, gotTo string
	mock := &mockLayoutService{
		reorderFunc: func(ctx context.Context, layoutID, fromID, toID string) (*models.DashboardLayout, error) {
			gotFrom, gotTo = fromID, toID
			return &models.DashboardLayout{ID: layoutID}, nil
		},
	}
	handler := newLayoutHandler(mock)

	body := `{"target_id":"w3"}`
	req := httptest.NewRequest("POST", "/api/layouts/layout_1/widgets/w1/reorder", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "w1", gotFrom)
	assert.Equal(t, "w3", gotTo)
}

func TestReorderWidgetRequiresTarget(t *testing.T) {
	handler := newLayoutHandler(&mockLayoutService{})

	req := httptest.NewRequest("POST", "/api/layouts/layout_1/widgets/w1/reorder", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestCatalogHandler(t *testing.T) {
	mock := &mockLayoutService{
		catalog: []models.WidgetType{
			{Type: "queue-stats", Title: "Queue Stats", Size: "medium"},
			{Type: "portfolio", Title: "Portfolio", Size: "large"},
		},
	}
	handler := newLayoutHandler(mock)

	req := httptest.NewRequest("GET", "/api/widgets/catalog", nil)
	rec := httptest.NewRecorder()
	handler.CatalogHandler(rec, req)

	require.Equal(t, 200, rec.Code)

	var catalog []models.WidgetType
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))
	require.Len(t, catalog, 2)
	assert.Equal(t, "portfolio", catalog[1].Type)
}
