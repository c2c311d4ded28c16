package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/milkoapp/milko-backend/internal/deliveries"
	subscriptionsvc "github.com/milkoapp/milko-backend/internal/subscriptions"
	"github.com/milkoapp/milko-backend/pkg/db/models"
)

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Address:   u.Address,
		CreatedAt: u.CreatedAt,
	}
}

type productResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	PricePerLitre decimal.Decimal `json:"price_per_litre"`
	ImageURL      *string         `json:"image_url,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toProductResponse(p *models.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		PricePerLitre: p.PricePerLitre,
		ImageURL:      p.ImageURL,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
	}
}

func toProductResponses(items []models.Product) []productResponse {
	out := make([]productResponse, 0, len(items))
	for i := range items {
		out = append(out, toProductResponse(&items[i]))
	}
	return out
}

type subscriptionResponse struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"user_id"`
	ProductID       uuid.UUID        `json:"product_id"`
	Product         *productResponse `json:"product,omitempty"`
	LitresPerDay    decimal.Decimal  `json:"litres_per_day"`
	DurationMonths  int              `json:"duration_months"`
	DeliveryTime    string           `json:"delivery_time"`
	Status          string           `json:"status"`
	StartDate       string           `json:"start_date"`
	EndDate         string           `json:"end_date"`
	RazorpayOrderID string           `json:"razorpay_order_id"`
	CreatedAt       time.Time        `json:"created_at"`
}

func toSubscriptionResponse(s *models.Subscription) subscriptionResponse {
	resp := subscriptionResponse{
		ID:              s.ID,
		UserID:          s.UserID,
		ProductID:       s.ProductID,
		LitresPerDay:    s.LitresPerDay,
		DurationMonths:  s.DurationMonths,
		DeliveryTime:    s.DeliveryTime,
		Status:          string(s.Status),
		StartDate:       s.StartDate.Format(time.DateOnly),
		EndDate:         s.EndDate.Format(time.DateOnly),
		RazorpayOrderID: s.RazorpayOrderID,
		CreatedAt:       s.CreatedAt,
	}
	if s.Product != nil {
		product := toProductResponse(s.Product)
		resp.Product = &product
	}
	return resp
}

func toSubscriptionResponses(items []models.Subscription) []subscriptionResponse {
	out := make([]subscriptionResponse, 0, len(items))
	for i := range items {
		out = append(out, toSubscriptionResponse(&items[i]))
	}
	return out
}

type createSubscriptionResponse struct {
	Subscription subscriptionResponse `json:"subscription"`
	OrderID      string               `json:"order_id"`
	AmountPaise  int64                `json:"amount_paise"`
	AmountRupees decimal.Decimal      `json:"amount_rupees"`
	Currency     string               `json:"currency"`
}

func toCreateSubscriptionResponse(result *subscriptionsvc.CreateResult) createSubscriptionResponse {
	return createSubscriptionResponse{
		Subscription: toSubscriptionResponse(result.Subscription),
		OrderID:      result.OrderID,
		AmountPaise:  result.Quote.AmountPaise,
		AmountRupees: result.Quote.AmountRupees,
		Currency:     result.Currency,
	}
}

type pausedDateResponse struct {
	Date string `json:"date"`
}

func toPausedDateResponses(items []models.PausedDate) []pausedDateResponse {
	out := make([]pausedDateResponse, 0, len(items))
	for _, item := range items {
		out = append(out, pausedDateResponse{Date: item.Date.Format(time.DateOnly)})
	}
	return out
}

type deliveryRowResponse struct {
	DeliveryID     uuid.UUID       `json:"delivery_id"`
	SubscriptionID uuid.UUID       `json:"subscription_id"`
	DeliveryDate   string          `json:"delivery_date"`
	Status         string          `json:"status"`
	DeliveryTime   string          `json:"delivery_time"`
	LitresPerDay   decimal.Decimal `json:"litres_per_day"`
	CustomerName   string          `json:"customer_name"`
	CustomerPhone  *string         `json:"customer_phone,omitempty"`
	Address        *string         `json:"address,omitempty"`
	ProductName    string          `json:"product_name"`
}

func toDeliveryRowResponses(rows []deliveries.DaySheetRow) []deliveryRowResponse {
	out := make([]deliveryRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, deliveryRowResponse{
			DeliveryID:     row.DeliveryID,
			SubscriptionID: row.SubscriptionID,
			DeliveryDate:   row.DeliveryDate.Format(time.DateOnly),
			Status:         string(row.Status),
			DeliveryTime:   row.DeliveryTime,
			LitresPerDay:   row.LitresPerDay,
			CustomerName:   row.CustomerName,
			CustomerPhone:  row.CustomerPhone,
			Address:        row.Address,
			ProductName:    row.ProductName,
		})
	}
	return out
}
