package places

import (
	"strings"

	"hotel_bff/internal/domain"
)

// ---- legacy wire shapes ----

type legacyPrediction struct {
	PlaceID              string   `json:"place_id"`
	Description          string   `json:"description"`
	Types                []string `json:"types"`
	StructuredFormatting struct {
		MainText      string `json:"main_text"`
		SecondaryText string `json:"secondary_text"`
	} `json:"structured_formatting"`
}

type legacyLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type legacyPlace struct {
	PlaceID           string `json:"place_id"`
	Name              string `json:"name"`
	FormattedAddress  string `json:"formatted_address"`
	AddressComponents []struct {
		LongName  string   `json:"long_name"`
		ShortName string   `json:"short_name"`
		Types     []string `json:"types"`
	} `json:"address_components"`
	Geometry *struct {
		Location *legacyLatLng `json:"location"`
		Viewport *struct {
			Northeast legacyLatLng `json:"northeast"`
			Southwest legacyLatLng `json:"southwest"`
		} `json:"viewport"`
	} `json:"geometry"`
	Types []string `json:"types"`
}

// ---- new wire shapes ----

type localizedText struct {
	Text string `json:"text"`
}

type newPrediction struct {
	PlaceID          string        `json:"placeId"`
	Text             localizedText `json:"text"`
	StructuredFormat struct {
		MainText      localizedText `json:"mainText"`
		SecondaryText localizedText `json:"secondaryText"`
	} `json:"structuredFormat"`
	Types []string `json:"types"`
}

type newSuggestion struct {
	PlacePrediction *newPrediction `json:"placePrediction"`
}

type newLatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type newPlace struct {
	ID                string        `json:"id"`
	DisplayName       localizedText `json:"displayName"`
	FormattedAddress  string        `json:"formattedAddress"`
	Location          *newLatLng    `json:"location"`
	Viewport          *struct {
		Low  newLatLng `json:"low"`
		High newLatLng `json:"high"`
	} `json:"viewport"`
	AddressComponents []struct {
		LongText  string   `json:"longText"`
		ShortText string   `json:"shortText"`
		Types     []string `json:"types"`
	} `json:"addressComponents"`
	Types []string `json:"types"`
}

// ---- adapters: everything downstream only sees domain shapes ----

func fromLegacyPrediction(p legacyPrediction) domain.Prediction {
	main := p.StructuredFormatting.MainText
	if main == "" {
		main = p.Description
	}
	return domain.Prediction{
		PlaceID:       p.PlaceID,
		Description:   p.Description,
		MainText:      main,
		SecondaryText: p.StructuredFormatting.SecondaryText,
		Types:         p.Types,
	}
}

func fromNewPrediction(p newPrediction) domain.Prediction {
	main := p.StructuredFormat.MainText.Text
	if main == "" {
		main = p.Text.Text
	}
	return domain.Prediction{
		PlaceID:       p.PlaceID,
		Description:   p.Text.Text,
		MainText:      main,
		SecondaryText: p.StructuredFormat.SecondaryText.Text,
		Types:         p.Types,
	}
}

func fromLegacyPlace(p legacyPlace) domain.Place {
	out := domain.Place{
		PlaceID:          p.PlaceID,
		Name:             p.Name,
		FormattedAddress: p.FormattedAddress,
		Types:            p.Types,
	}
	if out.Name == "" {
		out.Name = firstAddressPart(p.FormattedAddress)
	}
	if p.Geometry != nil {
		if l := p.Geometry.Location; l != nil {
			out.Location = &domain.LatLng{Lat: l.Lat, Lng: l.Lng}
		}
		if v := p.Geometry.Viewport; v != nil {
			out.Viewport = &domain.Viewport{
				Low:  domain.LatLng{Lat: v.Southwest.Lat, Lng: v.Southwest.Lng},
				High: domain.LatLng{Lat: v.Northeast.Lat, Lng: v.Northeast.Lng},
			}
		}
	}
	for _, c := range p.AddressComponents {
		out.AddressComponents = append(out.AddressComponents, domain.AddressComponent{
			LongName: c.LongName, ShortName: c.ShortName, Types: c.Types,
		})
	}
	return out
}

func fromNewPlace(p newPlace) domain.Place {
	out := domain.Place{
		PlaceID:          p.ID,
		Name:             p.DisplayName.Text,
		FormattedAddress: p.FormattedAddress,
		Types:            p.Types,
	}
	if out.Name == "" {
		out.Name = firstAddressPart(p.FormattedAddress)
	}
	if p.Location != nil {
		out.Location = &domain.LatLng{Lat: p.Location.Latitude, Lng: p.Location.Longitude}
	}
	if p.Viewport != nil {
		out.Viewport = &domain.Viewport{
			Low:  domain.LatLng{Lat: p.Viewport.Low.Latitude, Lng: p.Viewport.Low.Longitude},
			High: domain.LatLng{Lat: p.Viewport.High.Latitude, Lng: p.Viewport.High.Longitude},
		}
	}
	for _, c := range p.AddressComponents {
		out.AddressComponents = append(out.AddressComponents, domain.AddressComponent{
			LongName: c.LongText, ShortName: c.ShortText, Types: c.Types,
		})
	}
	return out
}

// reverse geocode results carry no name
func firstAddressPart(addr string) string {
	if i := strings.IndexByte(addr, ','); i > 0 {
		return strings.TrimSpace(addr[:i])
	}
	return strings.TrimSpace(addr)
}
