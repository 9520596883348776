package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "Cash"
	PaymentMethodCard  PaymentMethod = "Card"
	PaymentMethodOther PaymentMethod = "Other"
)

func (t *PaymentMethod) UnmarshalJSON(b []byte) error {
	str, err := strconv.Unquote(string(b))
	if err != nil {
		return errors.New("payment method must be string")
	}
	switch str {
	case "Cash":
		*t = PaymentMethodCash
	case "Card":
		*t = PaymentMethodCard
	case "Other":
		*t = PaymentMethodOther
	default:
		return errors.New("invalid payment method")
	}
	return nil
}

func (t PaymentMethod) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(t))), nil
}

// SettlementStatus is the per-sale-record payout lifecycle:
// Unsettled -> Included (claimed by a payout) -> Settled (payout paid).
type SettlementStatus string

const (
	SettlementStatusUnsettled SettlementStatus = "Unsettled"
	SettlementStatusIncluded  SettlementStatus = "Included"
	SettlementStatusSettled   SettlementStatus = "Settled"
)

func (t *SettlementStatus) UnmarshalJSON(b []byte) error {
	str, err := strconv.Unquote(string(b))
	if err != nil {
		return errors.New("settlement status must be string")
	}
	switch str {
	case "Unsettled":
		*t = SettlementStatusUnsettled
	case "Included":
		*t = SettlementStatusIncluded
	case "Settled":
		*t = SettlementStatusSettled
	default:
		return errors.New("invalid settlement status")
	}
	return nil
}

func (t SettlementStatus) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(t))), nil
}

type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "Pending"
	PayoutStatusPaid    PayoutStatus = "Paid"
)

func (t *PayoutStatus) UnmarshalJSON(b []byte) error {
	str, err := strconv.Unquote(string(b))
	if err != nil {
		return errors.New("payout status must be string")
	}
	switch str {
	case "Pending":
		*t = PayoutStatusPending
	case "Paid":
		*t = PayoutStatusPaid
	default:
		return errors.New("invalid payout status")
	}
	return nil
}

func (t PayoutStatus) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(t))), nil
}

type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "Available"
	ItemStatusSold      ItemStatus = "Sold"
	ItemStatusReturned  ItemStatus = "Returned"
)

func (t *ItemStatus) UnmarshalJSON(b []byte) error {
	str, err := strconv.Unquote(string(b))
	if err != nil {
		return errors.New("item status must be string")
	}
	switch str {
	case "Available":
		*t = ItemStatusAvailable
	case "Sold":
		*t = ItemStatusSold
	case "Returned":
		*t = ItemStatusReturned
	default:
		return errors.New("invalid item status")
	}
	return nil
}

func (t ItemStatus) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(t))), nil
}

type NotificationEventType string

const (
	NotificationEventStatementGenerated NotificationEventType = "StatementGenerated"
	NotificationEventPayoutGenerated    NotificationEventType = "PayoutGenerated"
	NotificationEventPayoutPaid         NotificationEventType = "PayoutPaid"
)

const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusPublished  = "PUBLISHED"
	OutboxPublishStatusDead       = "DEAD"
)

// DateString accepts "2006-01-02" or "2006-01-02T15:04:05" in request payloads
// and stores as time.Time.
type DateString time.Time

func (t DateString) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(time.Time(t).Format("2006-01-02T15:04:05"))), nil
}

func (t *DateString) UnmarshalJSON(b []byte) error {
	str, err := strconv.Unquote(string(b))
	if err != nil {
		return errors.New("DateString must be string")
	}

	layout := "2006-01-02T15:04:05"
	if !strings.Contains(str, "T") {
		layout = "2006-01-02"
	}
	localTime, err := time.Parse(layout, str)
	if err != nil {
		return errors.New("error parsing datetime")
	}
	*t = DateString(localTime)

	return nil
}

func (t *DateString) StartOfDayUTCTime(timezone string) error {
	// do nothing if the pointer is nil
	if t == nil {
		return nil
	}

	localTime := time.Time(*t)

	if timezone == "" {
		timezone = "Asia/Yangon"
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}

	localTimeInZone := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		0, 0, 0, 0,
		location,
	)

	utcTime := localTimeInZone.In(time.UTC)
	*t = DateString(utcTime)

	return nil
}

func (t *DateString) EndOfDayUTCTime(timezone string) error {
	// do nothing if the pointer is nil
	if t == nil {
		return nil
	}

	localTime := time.Time(*t)

	if timezone == "" {
		timezone = "Asia/Yangon"
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}

	localTimeInZone := time.Date(
		localTime.Year(), localTime.Month(), localTime.Day(),
		23, 59, 59, 999, // Max nanoseconds
		location,
	)

	utcTime := localTimeInZone.In(time.UTC)
	*t = DateString(utcTime)

	return nil
}

// Value implements the driver.Valuer interface
func (t DateString) Value() (driver.Value, error) {
	return time.Time(t), nil
}

// Scan implements the sql.Scanner interface
func (t *DateString) Scan(value interface{}) error {
	if value == nil {
		*t = DateString(time.Time{})
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		*t = DateString(v)
	default:
		return fmt.Errorf("cannot convert %T to DateString", value)
	}
	return nil
}
