package serving

type GroupCreateRequest struct {
	Name       string              `json:"name" validate:"required,max=200"`
	Location   string              `json:"location" validate:"max=200"`
	GuestCount int                 `json:"guest_count" validate:"gte=0"`
	TableCount int                 `json:"table_count" validate:"gte=0"`
	TableSplit string              `json:"table_split" validate:"max=500"`
	Date       string              `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Items      []ItemCreateRequest `json:"items" validate:"dive"`
}

type GroupUpdateRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Location   *string `json:"location,omitempty" validate:"omitempty,max=200"`
	GuestCount *int    `json:"guest_count,omitempty" validate:"omitempty,gte=0"`
	TableCount *int    `json:"table_count,omitempty" validate:"omitempty,gte=0"`
	Date       *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type ItemCreateRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	TotalQuantity int    `json:"total_quantity" validate:"gte=0"`
	Unit          string `json:"unit" validate:"max=50"`
	Note          string `json:"note,omitempty" validate:"max=500"`
}

type ItemUpdateRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	TotalQuantity  *int    `json:"total_quantity,omitempty" validate:"omitempty,gte=0"`
	ServedQuantity *int    `json:"served_quantity,omitempty" validate:"omitempty,gte=0"`
	Unit           *string `json:"unit,omitempty" validate:"omitempty,max=50"`
	Note           *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

type RedistributeRequest struct {
	TableSplit string `json:"table_split" validate:"max=500"`
}

func (r GroupCreateRequest) toGroup() *Group {
	g := NewGroup()
	g.Name = r.Name
	g.Location = r.Location
	g.GuestCount = r.GuestCount
	g.TableCount = r.TableCount
	g.TableSplit = r.TableSplit
	g.Date = r.Date
	for _, item := range r.Items {
		g.Items = append(g.Items, item.toItem())
	}
	return g
}

func (r ItemCreateRequest) toItem() Item {
	return Item{
		Name:          r.Name,
		TotalQuantity: r.TotalQuantity,
		Unit:          r.Unit,
		Note:          r.Note,
	}
}

func (r GroupUpdateRequest) toPatch() GroupPatch {
	return GroupPatch{
		Name:       r.Name,
		Location:   r.Location,
		GuestCount: r.GuestCount,
		TableCount: r.TableCount,
		Date:       r.Date,
	}
}

func (r ItemUpdateRequest) toPatch() ItemPatch {
	return ItemPatch{
		Name:           r.Name,
		TotalQuantity:  r.TotalQuantity,
		ServedQuantity: r.ServedQuantity,
		Unit:           r.Unit,
		Note:           r.Note,
	}
}
