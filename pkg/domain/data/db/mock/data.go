package mocks

import (
	"context"
	"errors"

	"github.com/opst/dmcatalog/pkg/domain"
	kdbdata "github.com/opst/dmcatalog/pkg/domain/data/db"
)

// CallLog records arguments of each call.
type CallLog[T any] []T

func (l CallLog[T]) Times() uint {
	return uint(len(l))
}

type DataInterface struct {
	Impl struct {
		Register         func(context.Context, domain.DataRegistration) (domain.Data, error)
		Get              func(context.Context, domain.DataQuery) (domain.Data, error)
		Versions         func(context.Context, kdbdata.VersionsQuery) ([]domain.Data, error)
		NextVersion      func(context.Context, domain.Family) (int, error)
		SetStatus        func(context.Context, domain.DataKey, domain.Status) (domain.Data, error)
		AddParents       func(context.Context, domain.DataKey, []domain.DataKey) (domain.Data, error)
		PutAttributes    func(context.Context, domain.DataKey, []domain.Attribute) (domain.Data, error)
		RemoveAttributes func(context.Context, domain.DataKey, []string) (domain.Data, error)
		AddStorageUnit   func(context.Context, domain.DataKey, domain.StorageUnit) (domain.Data, error)
		Delete           func(context.Context, domain.DataKey) (domain.Data, error)
		Lookup           func(context.Context, domain.LookupQuery) ([]domain.Candidate, error)
	}
	Calls struct {
		Register    CallLog[domain.DataRegistration]
		Get         CallLog[domain.DataQuery]
		Versions    CallLog[kdbdata.VersionsQuery]
		NextVersion CallLog[domain.Family]
		SetStatus   CallLog[struct {
			Key    domain.DataKey
			Status domain.Status
		}]
		AddParents CallLog[struct {
			Child   domain.DataKey
			Parents []domain.DataKey
		}]
		PutAttributes CallLog[struct {
			Key        domain.DataKey
			Attributes []domain.Attribute
		}]
		RemoveAttributes CallLog[struct {
			Key   domain.DataKey
			Names []string
		}]
		AddStorageUnit CallLog[struct {
			Key         domain.DataKey
			StorageUnit domain.StorageUnit
		}]
		Delete CallLog[domain.DataKey]
		Lookup CallLog[domain.LookupQuery]
	}
}

func NewDataInterface() *DataInterface {
	return &DataInterface{}
}

var _ kdbdata.DataInterface = &DataInterface{}

func (di *DataInterface) Register(ctx context.Context, reg domain.DataRegistration) (domain.Data, error) {
	di.Calls.Register = append(di.Calls.Register, reg)
	if di.Impl.Register != nil {
		return di.Impl.Register(ctx, reg)
	}
	panic(errors.New("it should no be called"))
}

func (di *DataInterface) Get(ctx context.Context, q domain.DataQuery) (domain.Data, error) {
	di.Calls.Get = append(di.Calls.Get, q)
	if di.Impl.Get != nil {
		return di.Impl.Get(ctx, q)
	}
	panic(errors.New("it should no be called"))
}

func (di *DataInterface) Versions(ctx context.Context, q kdbdata.VersionsQuery) ([]domain.Data, error) {
	di.Calls.Versions = append(di.Calls.Versions, q)
	if di.Impl.Versions != nil {
		return di.Impl.Versions(ctx, q)
	}
	panic(errors.New("it should no be called"))
}

func (di *DataInterface) NextVersion(ctx context.Context, family domain.Family) (int, error) {
	di.Calls.NextVersion = append(di.Calls.NextVersion, family)
	if di.Impl.NextVersion != nil {
		return di.Impl.NextVersion(ctx, family)
	}
	panic(errors.New("it should no be called"))
}

func (di *DataInterface) SetStatus(ctx context.Context, key domain.DataKey, status domain.Status) (domain.Data, error) {
	di.Calls.SetStatus = append(di.Calls.SetStatus, struct {
		Key    domain.DataKey
		Status domain.Status
	}{Key: key, Status: status})
	if di.Impl.SetStatus != nil {
		return di.Impl.SetStatus(ctx, key, status)
	}
	panic(errors.New("it should no be called"))
}

func (di *DataInterface) AddParents(ctx context.Context, child domain.DataKey, parents []domain.DataKey) (domain.Data, error) {
	di.Calls.AddParents = append(di.Calls.AddParents, struct {
		Child   domain.DataKey
		Parents []domain.DataKey
	}{Child: child, Parents: parents})
	if di.Impl.AddParents != nil {
		return di.Impl.AddParents(ctx, child, parents)
	}
	panic(errors.New("it should no be called"))
}

func (di *DataInterface) PutAttributes(ctx context.Context, key domain.DataKey, attrs []domain.Attribute) (domain.Data, error) {
	di.Calls.PutAttributes = append(di.Calls.PutAttributes, struct {
		Key        domain.DataKey
		Attributes []domain.Attribute
	}{Key: key, Attributes: attrs})
	if di.Impl.PutAttributes != nil {
		return di.Impl.PutAttributes(ctx, key, attrs)
	}
	panic(errors.New("it should no be called"))
}

func (di *DataInterface) RemoveAttributes(ctx context.Context, key domain.DataKey, names []string) (domain.Data, error) {
	di.Calls.RemoveAttributes = append(di.Calls.RemoveAttributes, struct {
		Key   domain.DataKey
		Names []string
	}{Key: key, Names: names})
	if di.Impl.RemoveAttributes != nil {
		return di.Impl.RemoveAttributes(ctx, key, names)
	}
	panic(errors.New("it should no be called"))
}

func (di *DataInterface) AddStorageUnit(ctx context.Context, key domain.DataKey, su domain.StorageUnit) (domain.Data, error) {
	di.Calls.AddStorageUnit = append(di.Calls.AddStorageUnit, struct {
		Key         domain.DataKey
		StorageUnit domain.StorageUnit
	}{Key: key, StorageUnit: su})
	if di.Impl.AddStorageUnit != nil {
		return di.Impl.AddStorageUnit(ctx, key, su)
	}
	panic(errors.New("it should no be called"))
}

func (di *DataInterface) Delete(ctx context.Context, key domain.DataKey) (domain.Data, error) {
	di.Calls.Delete = append(di.Calls.Delete, key)
	if di.Impl.Delete != nil {
		return di.Impl.Delete(ctx, key)
	}
	panic(errors.New("it should no be called"))
}

func (di *DataInterface) Lookup(ctx context.Context, q domain.LookupQuery) ([]domain.Candidate, error) {
	di.Calls.Lookup = append(di.Calls.Lookup, q)
	if di.Impl.Lookup != nil {
		return di.Impl.Lookup(ctx, q)
	}
	panic(errors.New("it should no be called"))
}
