package simulator

import (
	"fmt"
	"time"

	"github.com/xitongsys/parquet-go/schema"
)

const (
	TopicTableSeated  = "table_seated_events"
	TopicOrderPlaced  = "order_placed_events"
	TopicSplitUpdated = "split_updated_events"
	TopicBillSettled  = "bill_settled_events"
	TopicMenuRotation = "menu_rotation_events"
)

// BaseEvent is the common structure for all emitted events
type BaseEvent struct {
	Timestamp int64  `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	EventType string `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	SessionID string `json:"sessionId,omitempty" parquet:"name=sessionId,type=BYTE_ARRAY,convertedtype=UTF8"`
	TableID   string `json:"tableId,omitempty" parquet:"name=tableId,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// TableSeatedEvent represents a party being seated after a QR scan
type TableSeatedEvent struct {
	BaseEvent
	GuestCount int64 `json:"guestCount" parquet:"name=guestCount,type=INT64"`
	SeatedAt   int64 `json:"seatedAt" parquet:"name=seatedAt,type=INT64"`
}

// OrderPlacedEvent represents a cart being submitted at adjusted prices
type OrderPlacedEvent struct {
	BaseEvent
	ItemIDs   string  `json:"itemIds" parquet:"name=itemIds,type=BYTE_ARRAY,convertedtype=UTF8"`
	LineCount int64   `json:"lineCount" parquet:"name=lineCount,type=INT64"`
	Subtotal  float64 `json:"subtotal" parquet:"name=subtotal,type=DOUBLE"`
	Status    string  `json:"status" parquet:"name=status,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// SplitUpdatedEvent represents a mutation of the bill split
type SplitUpdatedEvent struct {
	BaseEvent
	Operation    string `json:"operation" parquet:"name=operation,type=BYTE_ARRAY,convertedtype=UTF8"`
	Participants int64  `json:"participants" parquet:"name=participants,type=INT64"`
	Accepted     bool   `json:"accepted" parquet:"name=accepted,type=BOOLEAN"`
}

// BillSettledEvent represents a settled bill with per-guest totals
type BillSettledEvent struct {
	BaseEvent
	Subtotal       float64 `json:"subtotal" parquet:"name=subtotal,type=DOUBLE"`
	PromoCode      string  `json:"promoCode,omitempty" parquet:"name=promoCode,type=BYTE_ARRAY,convertedtype=UTF8"`
	DiscountAmount float64 `json:"discountAmount" parquet:"name=discountAmount,type=DOUBLE"`
	Total          float64 `json:"total" parquet:"name=total,type=DOUBLE"`
	GuestTotals    string  `json:"guestTotals" parquet:"name=guestTotals,type=BYTE_ARRAY,convertedtype=UTF8"`
	Status         string  `json:"status" parquet:"name=status,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// MenuRotationEvent represents the set of visible categories changing
type MenuRotationEvent struct {
	BaseEvent
	ActiveMenus       string `json:"activeMenus" parquet:"name=activeMenus,type=BYTE_ARRAY,convertedtype=UTF8"`
	VisibleCategories string `json:"visibleCategories" parquet:"name=visibleCategories,type=BYTE_ARRAY,convertedtype=UTF8"`
}

func GetSchema(topic string) (*schema.SchemaHandler, error) {
	var sh *schema.SchemaHandler
	var err error

	switch topic {
	case TopicTableSeated:
		sh, err = schema.NewSchemaHandlerFromStruct(new(TableSeatedEvent))
	case TopicOrderPlaced:
		sh, err = schema.NewSchemaHandlerFromStruct(new(OrderPlacedEvent))
	case TopicSplitUpdated:
		sh, err = schema.NewSchemaHandlerFromStruct(new(SplitUpdatedEvent))
	case TopicBillSettled:
		sh, err = schema.NewSchemaHandlerFromStruct(new(BillSettledEvent))
	case TopicMenuRotation:
		sh, err = schema.NewSchemaHandlerFromStruct(new(MenuRotationEvent))
	default:
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}

	if err != nil {
		return nil, fmt.Errorf("error creating schema for %s: %w", topic, err)
	}
	return sh, nil
}

func NewBaseEvent(eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		Timestamp: timestamp.Unix(),
		EventType: eventType,
	}
}
