package domain

type SearchMode string

const (
	ModePlace SearchMode = "place"
	ModeVibe  SearchMode = "vibe"
)

// RateQuery is the inbound search request as the frontend sends it.
type RateQuery struct {
	Mode             SearchMode  `json:"mode"`
	PlaceID          string      `json:"placeId,omitempty"`
	Vibe             string      `json:"vibe,omitempty"`
	HotelID          string      `json:"hotelId,omitempty"`
	Checkin          string      `json:"checkin"`
	Checkout         string      `json:"checkout"`
	Occupancies      []Occupancy `json:"occupancies"`
	Currency         string      `json:"currency,omitempty"`
	GuestNationality string      `json:"guestNationality,omitempty"`
	Lat              *float64    `json:"lat,omitempty"`
	Lng              *float64    `json:"lng,omitempty"`
	Radius           *float64    `json:"radius,omitempty"`
	Timeout          *int        `json:"timeout,omitempty"` // seconds, forwarded upstream
}

// RatesRequest is what we send to the rates provider.
type RatesRequest struct {
	HotelIDs         []string
	PlaceID          string
	AIQuery          string
	Lat, Lng         *float64
	Radius           *float64
	Occupancies      []Occupancy
	Currency         string
	GuestNationality string
	Checkin          string
	Checkout         string
	Timeout          *int
	RefundableOnly   bool
	Margin           *float64
	AdditionalMarkup *float64
	IncludeHotelData bool
}

type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Rate struct {
	Name          string `json:"name"`
	BoardName     string `json:"boardName,omitempty"`
	RetailTotal   Money  `json:"retailTotal"`
	TaxesIncluded bool   `json:"taxesIncluded"`
	RefundableTag string `json:"refundableTag,omitempty"`
}

type RoomType struct {
	OfferID         string `json:"offerId"`
	Name            string `json:"name,omitempty"`
	OfferRetailRate Money  `json:"offerRetailRate"`
	Rates           []Rate `json:"rates"`
}

type HotelRates struct {
	HotelID   string     `json:"hotelId"`
	RoomTypes []RoomType `json:"roomTypes"`
}

// HotelSummary is the optional hotel data the provider embeds in a rates response.
type HotelSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Country     string   `json:"country,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"reviewCount,omitempty"`
	Stars       *float64 `json:"stars,omitempty"`
	MainPhoto   string   `json:"mainPhoto,omitempty"`
	Address     string   `json:"address,omitempty"`
}

type RatesResponse struct {
	Rates  []HotelRates
	Hotels []HotelSummary
}

type HotelDetails struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Address      string   `json:"address,omitempty"`
	City         string   `json:"city,omitempty"`
	Country      string   `json:"country,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	Stars        *float64 `json:"stars,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	ReviewCount  *int     `json:"reviewCount,omitempty"`
	MainPhoto    string   `json:"mainPhoto,omitempty"`
	Images       []string `json:"images,omitempty"`
	Facilities   []string `json:"facilities,omitempty"`
	CheckinTime  string   `json:"checkinTime,omitempty"`
	CheckoutTime string   `json:"checkoutTime,omitempty"`
}

// HotelBatch keeps the input order in IDs; ByID only holds hotels that resolved.
type HotelBatch struct {
	IDs  []string                `json:"hotelIds"`
	ByID map[string]HotelDetails `json:"hotels"`
}

type PriceInfo struct {
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	TaxIncluded   bool    `json:"taxIncluded"`
	RefundableTag string  `json:"refundableTag,omitempty"`
}

type HotelOffer struct {
	HotelID string    `json:"hotelId"`
	OfferID string    `json:"offerId"`
	Name    string    `json:"name,omitempty"`
	Price   PriceInfo `json:"price"`
}

type HotelCard struct {
	Name        string   `json:"name,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"reviewCount,omitempty"`
	Stars       *float64 `json:"stars,omitempty"`
	MainPhoto   string   `json:"mainPhoto,omitempty"`
	Address     string   `json:"address,omitempty"`
}

type RateSearchResult struct {
	Offers                     []HotelOffer         `json:"offers"`
	PricesByHotelID            map[string]PriceInfo `json:"pricesByHotelId"`
	HasRefundableRateByHotelID map[string]bool      `json:"hasRefundableRateByHotelId"`
	HotelDetailsByHotelID      map[string]HotelCard `json:"hotelDetailsByHotelId"`
	PromoConfig                PromoConfig          `json:"promoConfig"`
}

type HotelRatesResult struct {
	HotelID           string      `json:"hotelId"`
	RoomTypes         []RoomType  `json:"roomTypes"`
	HasRefundableRate bool        `json:"hasRefundableRate"`
	PromoConfig       PromoConfig `json:"promoConfig"`
}

type Prebook struct {
	PrebookID     string `json:"prebookId"`
	OfferID       string `json:"offerId"`
	TransactionID string `json:"transactionId"`
	SecretKey     string `json:"-"`
	Price         Money  `json:"price"`
	PriceChanged  bool   `json:"priceChanged"`
}

// PaymentHandoff is everything the payment widget needs to initialise once.
type PaymentHandoff struct {
	PublishableKey string `json:"publishableKey"`
	SecretKey      string `json:"secretKey"`
	TransactionID  string `json:"transactionId"`
	PrebookID      string `json:"prebookId"`
	ReturnURL      string `json:"returnUrl"`
}

type PrebookResult struct {
	Prebook Prebook        `json:"prebook"`
	Payment PaymentHandoff `json:"payment"`
}

type Holder struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type Guest struct {
	OccupancyNumber int    `json:"occupancyNumber"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email,omitempty"`
}

type BookRequest struct {
	PrebookID     string  `json:"prebookId"`
	TransactionID string  `json:"transactionId"`
	Holder        Holder  `json:"holder"`
	Guests        []Guest `json:"guests"`
}

type Booking struct {
	BookingID             string `json:"bookingId"`
	Status                string `json:"status"`
	HotelConfirmationCode string `json:"hotelConfirmationCode,omitempty"`
	HotelName             string `json:"hotelName,omitempty"`
	Checkin               string `json:"checkin,omitempty"`
	Checkout              string `json:"checkout,omitempty"`
	Price                 Money  `json:"price"`
}
