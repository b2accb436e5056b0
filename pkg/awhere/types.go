package awhere

import (
	"encoding/json"
	"strconv"
)

// Link represents a HAL link.
type Link struct {
	Href string `json:"href" yaml:"href"`
}

// Links is the "_links" object attached to most resources.
type Links map[string]Link

// CenterPoint is a field's geographic center.
type CenterPoint struct {
	Latitude  float64 `json:"latitude"  yaml:"latitude"  validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" yaml:"longitude" validate:"gte=-180,lte=180"`
}

// Key returns the normalized "latitude,longitude" cache key.
func (c CenterPoint) Key() string {
	return CoordinateKey(c.Latitude, c.Longitude)
}

// CoordinateKey formats a coordinate pair with the shortest decimal
// representation that round-trips, so 12.50 and 12.5 share a key.
func CoordinateKey(latitude, longitude float64) string {
	return strconv.FormatFloat(latitude, 'f', -1, 64) + "," + strconv.FormatFloat(longitude, 'f', -1, 64)
}

// Field is a named area registered with the service.
type Field struct {
	ID          string      `json:"id"                yaml:"id"`
	Name        string      `json:"name,omitempty"    yaml:"name,omitempty"`
	FarmID      string      `json:"farmId,omitempty"  yaml:"farm_id,omitempty"`
	Acres       float64     `json:"acres,omitempty"   yaml:"acres,omitempty"`
	CenterPoint CenterPoint `json:"centerPoint"       yaml:"center_point"`
	Links       Links       `json:"_links,omitempty"  yaml:"links,omitempty"`
}

// FieldList is the /v2/fields listing.
type FieldList struct {
	Fields []Field `json:"fields"           yaml:"fields"`
	Links  Links   `json:"_links,omitempty" yaml:"links,omitempty"`
}

// FieldCreateRequest creates a field. ID, FarmID and Name get defaults when
// empty; Acres is derived from Hectares when only the latter is set; the
// center point falls back to Latitude/Longitude.
type FieldCreateRequest struct {
	ID          string       `json:"id,omitempty"`
	FarmID      string       `json:"farmId,omitempty"`
	Name        string       `json:"name,omitempty"`
	Acres       float64      `json:"acres,omitempty"       validate:"gte=0"`
	Hectares    float64      `json:"-"                     validate:"gte=0"`
	CenterPoint *CenterPoint `json:"centerPoint,omitempty"`
	Latitude    float64      `json:"-"                     validate:"gte=-90,lte=90"`
	Longitude   float64      `json:"-"                     validate:"gte=-180,lte=180"`
}

// FieldUpdateRequest updates a field's name or farm.
type FieldUpdateRequest struct {
	Name   *string `json:"name,omitempty"`
	FarmID *string `json:"farmId,omitempty"`
}

// Measurement is an amount with units.
type Measurement struct {
	Amount *float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
	Units  string   `json:"units,omitempty"  yaml:"units,omitempty"`
}

// Range is a min/max pair with units.
type Range struct {
	Max   *float64 `json:"max,omitempty"   yaml:"max,omitempty"`
	Min   *float64 `json:"min,omitempty"   yaml:"min,omitempty"`
	Units string   `json:"units,omitempty" yaml:"units,omitempty"`
}

// Location is the point a weather record refers to.
type Location struct {
	Latitude  float64 `json:"latitude"          yaml:"latitude"`
	Longitude float64 `json:"longitude"         yaml:"longitude"`
	FieldID   string  `json:"fieldId,omitempty" yaml:"field_id,omitempty"`
}

// Planting is a crop planting on a field.
type Planting struct {
	ID                int               `json:"id,omitempty"                yaml:"id,omitempty"`
	FieldID           string            `json:"fieldId,omitempty"           yaml:"field_id,omitempty"`
	Crop              string            `json:"crop,omitempty"              yaml:"crop,omitempty"`
	PlantingDate      string            `json:"plantingDate,omitempty"      yaml:"planting_date,omitempty"`
	ActualHarvestDate string            `json:"actualHarvestDate,omitempty" yaml:"actual_harvest_date,omitempty"`
	Projections       *PlantingForecast `json:"projections,omitempty"       yaml:"projections,omitempty"`
	Yield             *Measurement      `json:"yield,omitempty"             yaml:"yield,omitempty"`
	Links             Links             `json:"_links,omitempty"            yaml:"links,omitempty"`
}

// PlantingForecast holds projected yield and harvest date.
type PlantingForecast struct {
	YieldAmount *float64 `json:"yieldAmount,omitempty" yaml:"yield_amount,omitempty"`
	YieldUnits  string   `json:"yieldUnits,omitempty"  yaml:"yield_units,omitempty"`
	HarvestDate string   `json:"harvestDate,omitempty" yaml:"harvest_date,omitempty"`
}

// PlantingRequest creates a planting.
type PlantingRequest struct {
	Crop              string            `json:"crop,omitempty"`
	PlantingDate      string            `json:"plantingDate,omitempty"`
	ActualHarvestDate string            `json:"actualHarvestDate,omitempty"`
	Projections       *PlantingForecast `json:"projections,omitempty"`
	Yield             *Measurement      `json:"yield,omitempty"`
}

// PlantingQuery selects plantings. FieldID and PlantingID narrow the path;
// Current selects the field's current planting.
type PlantingQuery struct {
	FieldID    string
	PlantingID string
	Current    bool
	Params     Params
}

// CurrentConditions is the current weather at a field.
type CurrentConditions struct {
	FieldID          string       `json:"fieldId,omitempty"          yaml:"field_id,omitempty"`
	DateTime         string       `json:"dateTime,omitempty"         yaml:"date_time,omitempty"`
	Location         *Location    `json:"location,omitempty"         yaml:"location,omitempty"`
	ConditionsCode   string       `json:"conditionsCode,omitempty"   yaml:"conditions_code,omitempty"`
	ConditionsText   string       `json:"conditionsText,omitempty"   yaml:"conditions_text,omitempty"`
	Temperature      *Measurement `json:"temperature,omitempty"      yaml:"temperature,omitempty"`
	Precipitation    *Measurement `json:"precipitation,omitempty"    yaml:"precipitation,omitempty"`
	RelativeHumidity *Measurement `json:"relativeHumidity,omitempty" yaml:"relative_humidity,omitempty"`
	Wind             *Measurement `json:"wind,omitempty"             yaml:"wind,omitempty"`
}

// ForecastBlock is one forecast interval within a day.
type ForecastBlock struct {
	StartTime      string         `json:"startTime,omitempty"      yaml:"start_time,omitempty"`
	EndTime        string         `json:"endTime,omitempty"        yaml:"end_time,omitempty"`
	ConditionsCode string         `json:"conditionsCode,omitempty" yaml:"conditions_code,omitempty"`
	ConditionsText string         `json:"conditionsText,omitempty" yaml:"conditions_text,omitempty"`
	Temperatures   *Range         `json:"temperatures,omitempty"   yaml:"temperatures,omitempty"`
	Precipitation  *Precipitation `json:"precipitation,omitempty"  yaml:"precipitation,omitempty"`
}

// Precipitation is a precipitation chance and amount.
type Precipitation struct {
	Chance *float64 `json:"chance,omitempty" yaml:"chance,omitempty"`
	Amount *float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
	Units  string   `json:"units,omitempty"  yaml:"units,omitempty"`
}

// ForecastDay groups the forecast blocks of one date.
type ForecastDay struct {
	Date     string          `json:"date"               yaml:"date"`
	Location *Location       `json:"location,omitempty" yaml:"location,omitempty"`
	Forecast []ForecastBlock `json:"forecast"           yaml:"forecast"`
}

// ForecastList is a forecast response. Single-day requests are normalized
// into a one-element list.
type ForecastList struct {
	Forecasts []ForecastDay `json:"forecasts"        yaml:"forecasts"`
	Links     Links         `json:"_links,omitempty" yaml:"links,omitempty"`
}

// ForecastQuery narrows a forecast to a single date.
type ForecastQuery struct {
	Date   string
	Params Params
}

// Observation is a day of observed weather.
type Observation struct {
	Date          string         `json:"date"                    yaml:"date"`
	Location      *Location      `json:"location,omitempty"      yaml:"location,omitempty"`
	Temperatures  *Range         `json:"temperatures,omitempty"  yaml:"temperatures,omitempty"`
	Precipitation *Measurement   `json:"precipitation,omitempty" yaml:"precipitation,omitempty"`
	Solar         *Measurement   `json:"solar,omitempty"         yaml:"solar,omitempty"`
	Wind          map[string]any `json:"wind,omitempty"          yaml:"wind,omitempty"`
}

// ObservationList is an observations response.
type ObservationList struct {
	Observations []Observation `json:"observations"     yaml:"observations"`
	Links        Links         `json:"_links,omitempty" yaml:"links,omitempty"`
}

// ObservationQuery narrows observations to a date range. Both dates must be
// set for the range to apply. Limit defaults to 120.
type ObservationQuery struct {
	StartDate string
	EndDate   string
	Limit     int
	Params    Params
}

// Crop is a crop the agronomic models support.
type Crop struct {
	ID               string `json:"id"                 yaml:"id"`
	Name             string `json:"name"               yaml:"name"`
	Type             string `json:"type,omitempty"     yaml:"type,omitempty"`
	Variety          string `json:"variety,omitempty"  yaml:"variety,omitempty"`
	IsDefaultForCrop bool   `json:"isDefaultForCrop"   yaml:"is_default_for_crop"`
}

// CropList is the crops listing.
type CropList struct {
	Crops []Crop `json:"crops"            yaml:"crops"`
	Links Links  `json:"_links,omitempty" yaml:"links,omitempty"`
}

// CropQuery controls the crops listing. Limit defaults to 120.
type CropQuery struct {
	Limit        int
	DefaultsOnly bool
	Params       Params
}

// Model is an agronomic model.
type Model struct {
	ID          string            `json:"id"                    yaml:"id"`
	Name        string            `json:"name"                  yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string            `json:"type,omitempty"        yaml:"type,omitempty"`
	Source      map[string]string `json:"source,omitempty"      yaml:"source,omitempty"`
}

// ModelList is the models listing.
type ModelList struct {
	Models []Model `json:"models"           yaml:"models"`
	Links  Links   `json:"_links,omitempty" yaml:"links,omitempty"`
}

// AgronomicDay holds the agronomic values of one day.
type AgronomicDay struct {
	Date              string       `json:"date"                               yaml:"date"`
	GDD               *float64     `json:"gdd,omitempty"                      yaml:"gdd,omitempty"`
	PET               *Measurement `json:"pet,omitempty"                      yaml:"pet,omitempty"`
	PPET              *float64     `json:"ppet,omitempty"                     yaml:"ppet,omitempty"`
	AccumulatedGDD    *float64     `json:"accumulatedGdd,omitempty"           yaml:"accumulated_gdd,omitempty"`
	AccumulatedPrecip *Measurement `json:"accumulatedPrecipitation,omitempty" yaml:"accumulated_precipitation,omitempty"`
}

// AgronomicValues is the agronomic values response.
type AgronomicValues struct {
	FieldID     string         `json:"fieldId,omitempty"     yaml:"field_id,omitempty"`
	Location    *Location      `json:"location,omitempty"    yaml:"location,omitempty"`
	Date        string         `json:"date,omitempty"        yaml:"date,omitempty"`
	DailyValues []AgronomicDay `json:"dailyValues,omitempty" yaml:"daily_values,omitempty"`
	Links       Links          `json:"_links,omitempty"      yaml:"links,omitempty"`
}

// ModelResults is the output of an agronomic model run on a field.
type ModelResults struct {
	ModelID      string          `json:"modelId"                yaml:"model_id"`
	FieldID      string          `json:"fieldId,omitempty"      yaml:"field_id,omitempty"`
	PlantingDate string          `json:"plantingDate,omitempty" yaml:"planting_date,omitempty"`
	Location     *Location       `json:"location,omitempty"     yaml:"location,omitempty"`
	Stages       json.RawMessage `json:"stages,omitempty"       yaml:"-"`
	Links        Links           `json:"_links,omitempty"       yaml:"links,omitempty"`
}

// BatchRequest is one GET request executed inside a batch job.
type BatchRequest struct {
	Path   string
	Params Params
}

// JobResult is the outcome of one batch request.
type JobResult struct {
	Title      string          `json:"title"                yaml:"title"`
	HTTPStatus int             `json:"httpStatus,omitempty" yaml:"http_status,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"    yaml:"-"`
}

// Job is a batch job.
type Job struct {
	JobID     json.Number `json:"jobId"               yaml:"job_id"`
	JobStatus string      `json:"jobStatus,omitempty" yaml:"job_status,omitempty"`
	Results   []JobResult `json:"results,omitempty"   yaml:"results,omitempty"`
	Links     Links       `json:"_links,omitempty"    yaml:"links,omitempty"`
}
