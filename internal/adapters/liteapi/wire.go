package liteapi

import "hotel_bff/internal/domain"

// ---- outbound bodies ----

type occupancyWire struct {
	Adults   int   `json:"adults"`
	Children []int `json:"children,omitempty"`
}

type ratesBody struct {
	HotelIDs         []string        `json:"hotelIds,omitempty"`
	PlaceID          string          `json:"placeId,omitempty"`
	AISearch         string          `json:"aiSearch,omitempty"`
	Latitude         *float64        `json:"latitude,omitempty"`
	Longitude        *float64        `json:"longitude,omitempty"`
	Radius           *int            `json:"radius,omitempty"` // meters
	Occupancies      []occupancyWire `json:"occupancies"`
	Currency         string          `json:"currency"`
	GuestNationality string          `json:"guestNationality"`
	Checkin          string          `json:"checkin"`
	Checkout         string          `json:"checkout"`
	Timeout          *int            `json:"timeout,omitempty"`
	RefundableOnly   bool            `json:"refundableRatesOnly,omitempty"`
	Margin           *float64        `json:"margin,omitempty"`
	AdditionalMarkup *float64        `json:"additionalMarkup,omitempty"`
	IncludeHotelData bool            `json:"includeHotelData,omitempty"`
	MaxRatesPerHotel int             `json:"maxRatesPerHotel,omitempty"`
}

func toRatesBody(r domain.RatesRequest) ratesBody {
	b := ratesBody{
		HotelIDs:         r.HotelIDs,
		PlaceID:          r.PlaceID,
		AISearch:         r.AIQuery,
		Latitude:         r.Lat,
		Longitude:        r.Lng,
		Currency:         r.Currency,
		GuestNationality: r.GuestNationality,
		Checkin:          r.Checkin,
		Checkout:         r.Checkout,
		Timeout:          r.Timeout,
		RefundableOnly:   r.RefundableOnly,
		Margin:           r.Margin,
		AdditionalMarkup: r.AdditionalMarkup,
		IncludeHotelData: r.IncludeHotelData,
	}
	if r.Radius != nil {
		m := int(*r.Radius * 1000) // km -> m
		b.Radius = &m
	}
	b.Occupancies = make([]occupancyWire, 0, len(r.Occupancies))
	for _, o := range r.Occupancies {
		b.Occupancies = append(b.Occupancies, occupancyWire{Adults: o.Adults, Children: o.Children})
	}
	return b
}

type bookBody struct {
	PrebookID string        `json:"prebookId"`
	Holder    domain.Holder `json:"holder"`
	Payment   struct {
		Method        string `json:"method"`
		TransactionID string `json:"transactionId"`
	} `json:"payment"`
	Guests []domain.Guest `json:"guests"`
}

func toBookBody(r domain.BookRequest) bookBody {
	b := bookBody{PrebookID: r.PrebookID, Holder: r.Holder, Guests: r.Guests}
	b.Payment.Method = "TRANSACTION_ID"
	b.Payment.TransactionID = r.TransactionID
	return b
}

// ---- inbound envelopes ----

type moneyWire struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type rateWire struct {
	Name       string `json:"name"`
	BoardName  string `json:"boardName"`
	RetailRate struct {
		Total        []moneyWire `json:"total"`
		TaxesAndFees []struct {
			Included bool    `json:"included"`
			Amount   float64 `json:"amount"`
		} `json:"taxesAndFees"`
	} `json:"retailRate"`
	CancellationPolicies struct {
		RefundableTag string `json:"refundableTag"`
	} `json:"cancellationPolicies"`
}

type roomTypeWire struct {
	OfferID         string     `json:"offerId"`
	Name            string     `json:"name"`
	OfferRetailRate moneyWire  `json:"offerRetailRate"`
	Rates           []rateWire `json:"rates"`
}

type ratesEnvelope struct {
	Data []struct {
		HotelID   string         `json:"hotelId"`
		RoomTypes []roomTypeWire `json:"roomTypes"`
	} `json:"data"`
	Hotels []map[string]any `json:"hotels"`
}

func (e ratesEnvelope) toDomain() domain.RatesResponse {
	out := domain.RatesResponse{Rates: make([]domain.HotelRates, 0, len(e.Data))}
	for _, h := range e.Data {
		hr := domain.HotelRates{HotelID: h.HotelID, RoomTypes: make([]domain.RoomType, 0, len(h.RoomTypes))}
		for _, rt := range h.RoomTypes {
			room := domain.RoomType{
				OfferID:         rt.OfferID,
				Name:            rt.Name,
				OfferRetailRate: domain.Money(rt.OfferRetailRate),
			}
			for _, r := range rt.Rates {
				room.Rates = append(room.Rates, r.toDomain())
			}
			if room.Name == "" && len(room.Rates) > 0 {
				room.Name = room.Rates[0].Name
			}
			hr.RoomTypes = append(hr.RoomTypes, room)
		}
		out.Rates = append(out.Rates, hr)
	}
	for _, h := range e.Hotels {
		out.Hotels = append(out.Hotels, mapHotelSummary(h))
	}
	return out
}

func (r rateWire) toDomain() domain.Rate {
	rate := domain.Rate{
		Name:          r.Name,
		BoardName:     r.BoardName,
		RefundableTag: r.CancellationPolicies.RefundableTag,
		TaxesIncluded: true,
	}
	if len(r.RetailRate.Total) > 0 {
		rate.RetailTotal = domain.Money(r.RetailRate.Total[0])
	}
	for _, t := range r.RetailRate.TaxesAndFees {
		if !t.Included {
			rate.TaxesIncluded = false
		}
	}
	return rate
}

type prebookWire struct {
	PrebookID              string  `json:"prebookId"`
	OfferID                string  `json:"offerId"`
	TransactionID          string  `json:"transactionId"`
	SecretKey              string  `json:"secretKey"`
	Price                  float64 `json:"price"`
	Currency               string  `json:"currency"`
	PriceDifferencePercent float64 `json:"priceDifferencePercent"`
}

func (p prebookWire) toDomain() domain.Prebook {
	return domain.Prebook{
		PrebookID:     p.PrebookID,
		OfferID:       p.OfferID,
		TransactionID: p.TransactionID,
		SecretKey:     p.SecretKey,
		Price:         domain.Money{Amount: p.Price, Currency: p.Currency},
		PriceChanged:  p.PriceDifferencePercent != 0,
	}
}

type bookingWire struct {
	BookingID             string  `json:"bookingId"`
	Status                string  `json:"status"`
	HotelConfirmationCode string  `json:"hotelConfirmationCode"`
	Checkin               string  `json:"checkin"`
	Checkout              string  `json:"checkout"`
	Price                 float64 `json:"price"`
	Currency              string  `json:"currency"`
	Hotel                 struct {
		Name string `json:"name"`
	} `json:"hotel"`
}

func (b bookingWire) toDomain() domain.Booking {
	return domain.Booking{
		BookingID:             b.BookingID,
		Status:                b.Status,
		HotelConfirmationCode: b.HotelConfirmationCode,
		HotelName:             b.Hotel.Name,
		Checkin:               b.Checkin,
		Checkout:              b.Checkout,
		Price:                 domain.Money{Amount: b.Price, Currency: b.Currency},
	}
}
