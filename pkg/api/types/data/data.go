package data

import (
	"github.com/opst/dmcatalog/pkg/api/types/formats"
	"github.com/opst/dmcatalog/pkg/domain"
	"github.com/opst/dmcatalog/pkg/utils/rfctime"
)

// Family identifies versions of Data sharing a partition.
type Family struct {
	formats.Key

	PartitionValue     string   `json:"partitionValue"`
	SubPartitionValues []string `json:"subPartitionValues,omitempty"`
}

func (f Family) Domain() (domain.Family, error) {
	return domain.NewFamily(f.Key.Domain(), f.PartitionValue, f.SubPartitionValues...)
}

func ComposeFamily(f domain.Family) Family {
	return Family{
		Key:                formats.ComposeKey(f.Format),
		PartitionValue:     f.PartitionValue,
		SubPartitionValues: f.SubPartitionValues.Values(),
	}
}

// Key identifies a Data.
type Key struct {
	Family
	Version int `json:"businessObjectDataVersion"`
}

func (k Key) Domain() (domain.DataKey, error) {
	f, err := k.Family.Domain()
	if err != nil {
		return domain.DataKey{}, err
	}
	dk := domain.DataKey{Family: f, Version: k.Version}
	if err := dk.Validate(); err != nil {
		return domain.DataKey{}, err
	}
	return dk, nil
}

func ComposeKey(k domain.DataKey) Key {
	return Key{Family: ComposeFamily(k.Family), Version: k.Version}
}

func keys(ks []Key) ([]domain.DataKey, error) {
	ret := make([]domain.DataKey, 0, len(ks))
	for _, k := range ks {
		dk, err := k.Domain()
		if err != nil {
			return nil, err
		}
		ret = append(ret, dk)
	}
	return ret, nil
}

func composeKeys(ks []domain.DataKey) []Key {
	ret := make([]Key, 0, len(ks))
	for _, k := range ks {
		ret = append(ret, ComposeKey(k))
	}
	return ret
}

type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func attributes(as []Attribute) []domain.Attribute {
	ret := make([]domain.Attribute, 0, len(as))
	for _, a := range as {
		ret = append(ret, domain.Attribute{Name: a.Name, Value: a.Value})
	}
	return ret
}

type StorageUnit struct {
	StorageName   string `json:"storageName"`
	DirectoryPath string `json:"storageDirectoryPath,omitempty"`
}

func (su StorageUnit) Domain() domain.StorageUnit {
	return domain.StorageUnit{StorageName: su.StorageName, DirectoryPath: su.DirectoryPath}
}

type StatusHistory struct {
	Status    string          `json:"status"`
	CreatedAt rfctime.RFC3339 `json:"createdAt"`
}

// Registration is a request to register a new version of Data.
type Registration struct {
	Family

	// Empty means VALID.
	Status       string        `json:"status,omitempty"`
	Attributes   []Attribute   `json:"attributes,omitempty"`
	StorageUnits []StorageUnit `json:"storageUnits,omitempty"`
	Parents      []Key         `json:"businessObjectDataParents,omitempty"`
}

func (r Registration) Domain() (domain.DataRegistration, error) {
	f, err := r.Family.Domain()
	if err != nil {
		return domain.DataRegistration{}, err
	}
	parents, err := keys(r.Parents)
	if err != nil {
		return domain.DataRegistration{}, err
	}
	sus := make([]domain.StorageUnit, 0, len(r.StorageUnits))
	for _, su := range r.StorageUnits {
		sus = append(sus, su.Domain())
	}
	status := domain.Status(r.Status)
	if st, err := domain.AsStatus(r.Status); err == nil {
		status = st
	}
	return domain.DataRegistration{
		Family:       f,
		Status:       status,
		Attributes:   attributes(r.Attributes),
		StorageUnits: sus,
		Parents:      parents,
	}, nil
}

type Detail struct {
	Id string `json:"id"`
	Key

	Latest        bool            `json:"latestVersion"`
	Status        string          `json:"status"`
	StatusHistory []StatusHistory `json:"statusHistory"`
	Attributes    []Attribute     `json:"attributes"`
	StorageUnits  []StorageUnit   `json:"storageUnits"`
	Parents       []Key           `json:"businessObjectDataParents"`
	Children      []Key           `json:"businessObjectDataChildren"`
	CreatedAt     rfctime.RFC3339 `json:"createdAt"`
}

func ComposeDetail(d domain.Data) Detail {
	history := make([]StatusHistory, 0, len(d.History))
	for _, h := range d.History {
		history = append(history, StatusHistory{
			Status: string(h.Status), CreatedAt: rfctime.RFC3339(h.CreatedAt),
		})
	}
	attrs := make([]Attribute, 0, len(d.Attributes))
	for _, a := range d.Attributes {
		attrs = append(attrs, Attribute{Name: a.Name, Value: a.Value})
	}
	sus := make([]StorageUnit, 0, len(d.StorageUnits))
	for _, su := range d.StorageUnits {
		sus = append(sus, StorageUnit{StorageName: su.StorageName, DirectoryPath: su.DirectoryPath})
	}
	return Detail{
		Id:            d.Id,
		Key:           ComposeKey(d.DataKey),
		Latest:        d.Latest,
		Status:        string(d.Status),
		StatusHistory: history,
		Attributes:    attrs,
		StorageUnits:  sus,
		Parents:       composeKeys(d.Parents),
		Children:      composeKeys(d.Children),
		CreatedAt:     rfctime.RFC3339(d.CreatedAt),
	}
}

type StatusChange struct {
	Key
	Status string `json:"status"`
}

type ParentsDeclaration struct {
	Key
	Parents []Key `json:"businessObjectDataParents"`
}

func (pd ParentsDeclaration) Domain() (domain.DataKey, []domain.DataKey, error) {
	child, err := pd.Key.Domain()
	if err != nil {
		return domain.DataKey{}, nil, err
	}
	parents, err := keys(pd.Parents)
	if err != nil {
		return domain.DataKey{}, nil, err
	}
	return child, parents, nil
}

type AttributesChange struct {
	Key
	Attributes []Attribute `json:"attributes"`
}

func (ac AttributesChange) Domain() (domain.DataKey, []domain.Attribute, error) {
	k, err := ac.Key.Domain()
	if err != nil {
		return domain.DataKey{}, nil, err
	}
	return k, attributes(ac.Attributes), nil
}

type StorageUnitAddition struct {
	Key
	StorageUnit
}

type Range struct {
	Start string `json:"startPartitionValue"`
	End   string `json:"endPartitionValue"`
}

type AvailabilityRequest struct {
	formats.Key

	// Empty means the partition key of the format.
	PartitionKey string `json:"partitionKey,omitempty"`

	// Either of PartitionValues or Range should be given.
	PartitionValues []string `json:"partitionValues,omitempty"`
	Range           *Range   `json:"partitionValueRange,omitempty"`

	// Empty means the partition key group of the format.
	Group string `json:"partitionKeyGroupName,omitempty"`

	SubPartitionValues []string `json:"subPartitionValues,omitempty"`

	// nil means the latest versions.
	Version *int `json:"businessObjectDataVersion,omitempty"`
}

func (r AvailabilityRequest) Domain() (domain.AvailabilityRequest, error) {
	subs, err := domain.NewSubPartitionValues(r.SubPartitionValues...)
	if err != nil {
		return domain.AvailabilityRequest{}, err
	}
	req := domain.AvailabilityRequest{
		Format:             r.Key.Domain(),
		PartitionKey:       r.PartitionKey,
		Values:             r.PartitionValues,
		Group:              r.Group,
		SubPartitionValues: subs,
		Version:            r.Version,
	}
	if r.Range != nil {
		req.Range = &domain.PartitionRange{Start: r.Range.Start, End: r.Range.End}
	}
	return req, nil
}

type PartitionStatus struct {
	PartitionValue string `json:"partitionValue"`
	Data           []Key  `json:"businessObjectData"`

	// empty when available.
	Reason string `json:"reason,omitempty"`
}

func composePartitionStatuses(entries []domain.AvailabilityEntry) []PartitionStatus {
	ret := make([]PartitionStatus, 0, len(entries))
	for _, e := range entries {
		ret = append(ret, PartitionStatus{
			PartitionValue: e.PartitionValue,
			Data:           composeKeys(e.Data),
			Reason:         string(e.Reason),
		})
	}
	return ret
}

type Availability struct {
	formats.Key
	PartitionKey string `json:"partitionKey"`

	Available    []PartitionStatus `json:"availableStatuses"`
	NotAvailable []PartitionStatus `json:"notAvailableStatuses"`
}

func ComposeAvailability(a domain.Availability) Availability {
	return Availability{
		Key:          formats.ComposeKey(a.Format),
		PartitionKey: a.PartitionKey,
		Available:    composePartitionStatuses(a.Available),
		NotAvailable: composePartitionStatuses(a.NotAvailable),
	}
}

type AvailabilityCollectionRequest struct {
	Requests []AvailabilityRequest `json:"businessObjectDataAvailabilityRequests"`
}

type AvailabilityCollection struct {
	IsAllDataAvailable bool           `json:"isAllDataAvailable"`
	Responses          []Availability `json:"businessObjectDataAvailabilityResponses"`
}

type KeyPrefix struct {
	KeyPrefix string `json:"keyPrefix"`
}
