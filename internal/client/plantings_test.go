package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

func TestPlantingsPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    awhere.PlantingQuery
		expected string
	}{
		{name: "account", query: awhere.PlantingQuery{}, expected: "/v2/agronomics/plantings"},
		{name: "field", query: awhere.PlantingQuery{FieldID: "f1"}, expected: "/v2/agronomics/fields/f1/plantings"},
		{name: "planting", query: awhere.PlantingQuery{FieldID: "f1", PlantingID: "12"}, expected: "/v2/agronomics/fields/f1/plantings/12"},
		{name: "current", query: awhere.PlantingQuery{FieldID: "f1", Current: true}, expected: "/v2/agronomics/fields/f1/plantings/current"},
		{name: "escaped", query: awhere.PlantingQuery{FieldID: "a/b"}, expected: "/v2/agronomics/fields/a%2Fb/plantings"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, plantingsPath(&testCase.query))
		})
	}
}

func TestPlantingsClient_List(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle("GET", "/v2/agronomics/fields/f1/plantings", func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "5", request.URL.Query().Get("limit"))
		writeJSON(writer, http.StatusOK, map[string]interface{}{"plantings": []map[string]interface{}{{"id": 1, "crop": "corn-hybrid"}}})
	})

	raw, err := api.newClient().Plantings().List(context.Background(), &awhere.PlantingQuery{
		FieldID: "f1",
		Params:  awhere.Params{"limit": 5},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"plantings":[{"id":1,"crop":"corn-hybrid"}]}`, string(raw))
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestPlantingsClient_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("current", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.respond("GET", "/v2/agronomics/fields/f1/plantings/current", http.StatusOK, map[string]interface{}{
			"id": 3, "fieldId": "f1", "crop": "wheat-hard-red", "plantingDate": "2024-04-01",
		})

		planting, err := api.newClient().Plantings().Current(context.Background(), "f1")
		require.NoError(t, err)
		assert.Equal(t, 3, planting.ID)
		assert.Equal(t, "wheat-hard-red", planting.Crop)

		_, err = api.newClient().Plantings().Current(context.Background(), "")
		require.ErrorIs(t, err, constants.ErrFieldIDRequired)
	})

	t.Run("create sends JSON", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.handle("POST", "/v2/agronomics/fields/f1/plantings", func(writer http.ResponseWriter, request *http.Request) {
			body := decodeBody(t, request)
			assert.Equal(t, map[string]interface{}{"crop": "corn", "plantingDate": "2024-05-01"}, body)
			writeJSON(writer, http.StatusCreated, map[string]interface{}{"id": 4, "crop": "corn"})
		})

		planting, err := api.newClient().Plantings().Create(context.Background(), "f1", &awhere.PlantingRequest{
			Crop:         "corn",
			PlantingDate: "2024-05-01",
		})
		require.NoError(t, err)
		assert.Equal(t, 4, planting.ID)
	})

	t.Run("update deletes then creates", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.respond("DELETE", "/v2/agronomics/fields/f1/plantings/4", http.StatusNoContent, nil)
		api.handle("POST", "/v2/agronomics/fields/f1/plantings", func(writer http.ResponseWriter, _ *http.Request) {
			assert.Equal(t, 1, api.count("DELETE", "/v2/agronomics/fields/f1/plantings/4"))
			writeJSON(writer, http.StatusCreated, map[string]interface{}{"id": 5, "crop": "soy"})
		})

		planting, err := api.newClient().Plantings().Update(context.Background(), "f1", "4", &awhere.PlantingRequest{Crop: "soy"})
		require.NoError(t, err)
		assert.Equal(t, 5, planting.ID)
	})

	t.Run("failed delete skips the create", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)

		_, err := api.newClient().Plantings().Update(context.Background(), "f1", "4", &awhere.PlantingRequest{Crop: "soy"})
		require.Error(t, err)
		assert.True(t, awhere.IsNotFound(err))
		assert.Equal(t, 0, api.count("POST", "/v2/agronomics/fields/f1/plantings"))
	})

	t.Run("delete defaults to the current planting", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.respond("DELETE", "/v2/agronomics/fields/f1/plantings/current", http.StatusNoContent, nil)

		require.NoError(t, api.newClient().Plantings().Delete(context.Background(), "f1", ""))
		assert.Equal(t, 1, api.count("DELETE", "/v2/agronomics/fields/f1/plantings/current"))
	})
}

func TestPlantingsClient_GetOrCreate(t *testing.T) {
	t.Parallel()

	created := map[string]interface{}{"id": 9, "crop": "corn"}

	t.Run("existing planting is returned", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.respond("GET", "/v2/agronomics/fields/f1/plantings/current", http.StatusOK, map[string]interface{}{"id": 2})

		planting, err := api.newClient().Plantings().GetOrCreate(context.Background(), "f1", &awhere.PlantingRequest{Crop: "corn"})
		require.NoError(t, err)
		assert.Equal(t, 2, planting.ID)
		assert.Equal(t, 0, api.count("POST", "/v2/agronomics/fields/f1/plantings"))
	})

	t.Run("404 creates", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.respond("POST", "/v2/agronomics/fields/f1/plantings", http.StatusCreated, created)

		planting, err := api.newClient().Plantings().GetOrCreate(context.Background(), "f1", &awhere.PlantingRequest{Crop: "corn"})
		require.NoError(t, err)
		assert.Equal(t, 9, planting.ID)
	})

	t.Run("empty record creates", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.respond("GET", "/v2/agronomics/fields/f1/plantings/current", http.StatusOK, map[string]interface{}{})
		api.respond("POST", "/v2/agronomics/fields/f1/plantings", http.StatusCreated, created)

		planting, err := api.newClient().Plantings().GetOrCreate(context.Background(), "f1", &awhere.PlantingRequest{Crop: "corn"})
		require.NoError(t, err)
		assert.Equal(t, 9, planting.ID)
	})

	t.Run("other errors are returned", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.respond("GET", "/v2/agronomics/fields/f1/plantings/current", http.StatusInternalServerError, map[string]interface{}{})

		_, err := api.newClient().Plantings().GetOrCreate(context.Background(), "f1", &awhere.PlantingRequest{Crop: "corn"})
		require.Error(t, err)
		assert.Equal(t, 0, api.count("POST", "/v2/agronomics/fields/f1/plantings"))
	})
}
