package domain

// Prediction is one autocomplete suggestion, independent of the provider generation.
type Prediction struct {
	PlaceID       string   `json:"placeId"`
	Description   string   `json:"description"`
	MainText      string   `json:"mainText"`
	SecondaryText string   `json:"secondaryText,omitempty"`
	Types         []string `json:"types,omitempty"`
}

type AddressComponent struct {
	LongName  string   `json:"longName"`
	ShortName string   `json:"shortName"`
	Types     []string `json:"types,omitempty"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Viewport struct {
	Low  LatLng `json:"low"`
	High LatLng `json:"high"`
}

type Place struct {
	PlaceID           string             `json:"placeId"`
	Name              string             `json:"name"`
	FormattedAddress  string             `json:"formattedAddress,omitempty"`
	Location          *LatLng            `json:"location,omitempty"`
	Viewport          *Viewport          `json:"viewport,omitempty"`
	Types             []string           `json:"types,omitempty"`
	AddressComponents []AddressComponent `json:"addressComponents,omitempty"`
}

// CountryCode returns the ISO short name of the "country" component, or "".
func (p Place) CountryCode() string {
	for _, c := range p.AddressComponents {
		for _, t := range c.Types {
			if t == "country" {
				return c.ShortName
			}
		}
	}
	return ""
}
