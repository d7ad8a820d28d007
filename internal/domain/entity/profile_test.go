package entity_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/hebammen-backend/internal/domain/entity"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestProfile_Apply_ValidMidwife(t *testing.T) {
	p := entity.NewProfile(uuid.New(), valueobject.RoleMidwife, "Anna")
	err := p.Apply(entity.ProfileUpdate{
		City:       strPtr("Berlin"),
		PostalCode: strPtr("10115"),
		RadiusKm:   intPtr(25),
		PriceModel: strPtr("fix"),
	})
	require.NoError(t, err)
	require.NotNil(t, p.PriceModel)
	assert.Equal(t, entity.PriceModelFix, *p.PriceModel)
}

func TestProfile_Apply_Validation(t *testing.T) {
	cases := map[string]entity.ProfileUpdate{
		"postal code": {City: strPtr("Berlin"), PostalCode: strPtr("1011"), RadiusKm: intPtr(10)},
		"city":        {PostalCode: strPtr("10115"), RadiusKm: intPtr(10)},
		"radius":      {City: strPtr("Berlin"), PostalCode: strPtr("10115"), RadiusKm: intPtr(0)},
		"name":        {DisplayName: strPtr(" "), City: strPtr("Berlin"), PostalCode: strPtr("10115"), RadiusKm: intPtr(10)},
		"price model": {City: strPtr("Berlin"), PostalCode: strPtr("10115"), RadiusKm: intPtr(10), PriceModel: strPtr("FREE")},
	}

	for name, update := range cases {
		p := entity.NewProfile(uuid.New(), valueobject.RoleMidwife, "Anna")
		err := p.Apply(update)
		assert.True(t, apperror.IsValidation(err), name)
	}
}

func TestProfile_Apply_ClientWithoutRadius(t *testing.T) {
	p := entity.NewProfile(uuid.New(), valueobject.RoleClient, "Lena")
	err := p.Apply(entity.ProfileUpdate{City: strPtr("Köln"), PostalCode: strPtr("50667")})
	assert.NoError(t, err)
}

func TestProfile_Completion(t *testing.T) {
	p := entity.NewProfile(uuid.New(), valueobject.RoleMidwife, "Anna")
	assert.Equal(t, 0, p.Completion())

	p.City = strPtr("Berlin")
	p.PostalCode = strPtr("10115")
	assert.Equal(t, 33, p.Completion())

	pm := entity.PriceModelFix
	p.Bio = strPtr("Hausgeburten seit 2010")
	p.Qualifications = []string{"Hebamme B.Sc."}
	p.Phone = strPtr("0151 23456789")
	p.PriceModel = &pm
	assert.Equal(t, 100, p.Completion())
}

func TestProfile_SubmitForReview(t *testing.T) {
	p := entity.NewProfile(uuid.New(), valueobject.RoleMidwife, "Anna")
	assert.False(t, p.SubmitForReview())

	pm := entity.PriceModelFix
	p.City = strPtr("Berlin")
	p.PostalCode = strPtr("10115")
	p.Bio = strPtr("Hausgeburten")
	p.Qualifications = []string{"Hebamme"}
	p.Phone = strPtr("030 1234567")
	p.PriceModel = &pm

	assert.True(t, p.SubmitForReview())
	assert.Equal(t, valueobject.VerificationPending, p.Verification)
	assert.False(t, p.SubmitForReview())
}

func TestDispute_Resolve(t *testing.T) {
	b, err := entity.NewBooking(uuid.New(), uuid.New(), valueobject.Money{})
	require.NoError(t, err)

	client := valueobject.Actor{ID: b.ClientID, Role: valueobject.RoleClient}
	d, err := entity.NewDispute(b, client, "Termin wurde nicht wahrgenommen")
	require.NoError(t, err)

	assert.True(t, apperror.IsForbidden(d.Resolve(client, "ok")))

	admin := valueobject.Actor{ID: uuid.New(), Role: valueobject.RoleAdmin}
	require.NoError(t, d.Resolve(admin, "Gebühr erstattet"))
	assert.Equal(t, valueobject.DisputeStatusResolved, d.Status)
	assert.NotNil(t, d.ResolvedAt)

	assert.Error(t, d.Resolve(admin, "again"))
}

func TestNewDispute_NonPartyForbidden(t *testing.T) {
	b, err := entity.NewBooking(uuid.New(), uuid.New(), valueobject.Money{})
	require.NoError(t, err)

	stranger := valueobject.Actor{ID: uuid.New(), Role: valueobject.RoleClient}
	_, err = entity.NewDispute(b, stranger, "Ich möchte mich beschweren")
	assert.True(t, apperror.IsForbidden(err))
}
