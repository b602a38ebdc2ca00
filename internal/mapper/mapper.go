// Package mapper converts domain entities to API DTOs.
// Timestamps are formatted as RFC 3339, calendar dates as yyyy-mm-dd.
package mapper

import (
	"time"

	"github.com/mesterwork/worksite-api/internal/domain"
)

const dateLayout = "2006-01-02"

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func ToOfferDTO(offer *domain.Offer) domain.OfferDTO {
	return domain.OfferDTO{
		ID:            offer.ID,
		Title:         offer.Title,
		RecipientName: offer.RecipientName,
		Location:      offer.Location,
		Status:        offer.Status,
		TotalPrice:    offer.TotalPrice,
		MaterialTotal: offer.MaterialTotal,
		WorkTotal:     offer.WorkTotal,
		ValidUntil:    formatDate(offer.ValidUntil),
		Notes:         offer.Notes,
		ItemCount:     len(offer.Items),
		CreatedAt:     offer.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     offer.UpdatedAt.Format(time.RFC3339),
	}
}

func ToOfferWithItemsDTO(offer *domain.Offer) domain.OfferWithItemsDTO {
	items := make([]domain.OfferItemDTO, len(offer.Items))
	for i := range offer.Items {
		items[i] = ToOfferItemDTO(&offer.Items[i])
	}
	return domain.OfferWithItemsDTO{
		OfferDTO: ToOfferDTO(offer),
		Items:    items,
	}
}

func ToOfferItemDTO(item *domain.OfferItem) domain.OfferItemDTO {
	return domain.OfferItemDTO{
		ID:                item.ID,
		OfferID:           item.OfferID,
		Name:              item.Name,
		Quantity:          item.Quantity,
		Unit:              item.Unit,
		UnitPrice:         item.UnitPrice,
		MaterialUnitPrice: item.MaterialUnitPrice,
		WorkTotal:         item.WorkTotal,
		MaterialTotal:     item.MaterialTotal,
		TotalPrice:        item.TotalPrice,
		Position:          item.Position,
	}
}

func ToWorkDTO(work *domain.Work) domain.WorkDTO {
	return domain.WorkDTO{
		ID:             work.ID,
		OfferID:        work.OfferID,
		Title:          work.Title,
		Location:       work.Location,
		IsActive:       work.IsActive,
		ProcessingByAI: work.ProcessingByAI,
		StartDate:      formatDate(work.StartDate),
		EndDate:        formatDate(work.EndDate),
		TotalPrice:     work.TotalPrice,
		Progress:       work.Progress,
		ItemCount:      len(work.Items),
		CreatedAt:      work.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      work.UpdatedAt.Format(time.RFC3339),
	}
}

func ToWorkItemDTO(item *domain.WorkItem) domain.WorkItemDTO {
	return domain.WorkItemDTO{
		ID:                item.ID,
		WorkID:            item.WorkID,
		Name:              item.Name,
		Quantity:          item.Quantity,
		Unit:              item.Unit,
		UnitPrice:         item.UnitPrice,
		MaterialUnitPrice: item.MaterialUnitPrice,
		CompletedQuantity: item.CompletedQuantity,
		Progress:          item.Progress,
		TotalPrice:        item.TotalPrice,
	}
}

func ToDiaryEntryDTO(entry *domain.WorkDiaryEntry) domain.WorkDiaryEntryDTO {
	return domain.WorkDiaryEntryDTO{
		ID:                entry.ID,
		WorkID:            entry.WorkID,
		WorkItemID:        entry.WorkItemID,
		Date:              entry.Date.Format(dateLayout),
		Quantity:          entry.Quantity,
		WorkHours:         entry.WorkHours,
		WorkerName:        entry.WorkerName,
		WorkerEmail:       entry.WorkerEmail,
		DailyRateSnapshot: entry.DailyRateSnapshot,
		ProgressAtDate:    entry.ProgressAtDate,
		GroupNo:           entry.GroupNo,
		Accepted:          entry.Accepted,
		Notes:             entry.Notes,
		PhotoCount:        len(entry.Photos),
	}
}

func ToWorkforceMemberDTO(member *domain.WorkforceMember) domain.WorkforceMemberDTO {
	return domain.WorkforceMemberDTO{
		ID:        member.ID,
		Name:      member.Name,
		Email:     member.Email,
		Phone:     member.Phone,
		Role:      member.Role,
		DailyRate: member.DailyRate,
	}
}

func ToMaterialDTO(material *domain.Material) domain.MaterialDTO {
	quotes := make([]domain.MaterialPriceQuoteDTO, len(material.PriceQuotes))
	for i := range material.PriceQuotes {
		q := &material.PriceQuotes[i]
		quotes[i] = domain.MaterialPriceQuoteDTO{
			Vendor:    q.Vendor,
			Price:     q.Price,
			Currency:  q.Currency,
			URL:       q.URL,
			FetchedAt: q.FetchedAt.Format(time.RFC3339),
		}
	}
	return domain.MaterialDTO{
		ID:                material.ID,
		WorkID:            material.WorkID,
		WorkItemID:        material.WorkItemID,
		Name:              material.Name,
		Quantity:          material.Quantity,
		Unit:              material.Unit,
		UnitPrice:         material.UnitPrice,
		AvailableQuantity: material.AvailableQuantity,
		AvailableFull:     material.AvailableFull,
		PriceQuotes:       quotes,
	}
}

func ToBillingDTO(billing *domain.Billing) domain.BillingDTO {
	items := make([]domain.BillingItemDTO, len(billing.Items))
	for i := range billing.Items {
		items[i] = ToBillingItemDTO(&billing.Items[i])
	}
	return domain.BillingDTO{
		ID:            billing.ID,
		OfferID:       billing.OfferID,
		Title:         billing.Title,
		Status:        billing.Status,
		TotalPrice:    billing.TotalPrice,
		InvoiceNumber: billing.InvoiceNumber,
		IssuedAt:      formatTime(billing.IssuedAt),
		Items:         items,
	}
}

func ToBillingItemDTO(item *domain.BillingItem) domain.BillingItemDTO {
	return domain.BillingItemDTO{
		ID:         item.ID,
		Name:       item.Name,
		Quantity:   item.Quantity,
		Unit:       item.Unit,
		UnitPrice:  item.UnitPrice,
		TotalPrice: item.TotalPrice,
	}
}
