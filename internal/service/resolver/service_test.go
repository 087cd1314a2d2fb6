package resolver

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/mocks"
	"github.com/fleetops/fuelwatch/internal/ports"
	"github.com/fleetops/fuelwatch/internal/similarity"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func newTestService(
	vehicles *mocks.MockVehicleRepository,
	cards *mocks.MockFuelCardRepository,
	stations *mocks.MockGasStationRepository,
	fuelTypes *mocks.MockFuelTypeRepository,
	mq *mocks.MockMessageQueue,
) *Service {
	if vehicles == nil {
		vehicles = &mocks.MockVehicleRepository{}
	}
	if cards == nil {
		cards = &mocks.MockFuelCardRepository{}
	}
	if stations == nil {
		stations = &mocks.MockGasStationRepository{}
	}
	if fuelTypes == nil {
		fuelTypes = &mocks.MockFuelTypeRepository{}
	}
	if mq == nil {
		mq = mocks.NewMockMessageQueue()
	}
	svc := NewService(
		vehicles, cards, stations, fuelTypes,
		&mocks.MockNormalizationProfileRepository{},
		mocks.NewMockCache(), mq,
		similarity.NewLevenshteinScorer(),
		DefaultConfig(), newTestLogger(),
	)
	return svc.(*Service)
}

func TestResolveVehicle_EmptyName(t *testing.T) {
	// Arrange
	svc := newTestService(nil, nil, nil, nil, nil)

	// Act
	_, _, err := svc.ResolveVehicle(context.Background(), "org-1", "   ", ports.VehicleHints{})

	// Assert
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveVehicle_ExactOriginalName(t *testing.T) {
	// Arrange
	existing := &domain.Vehicle{ID: "veh-1", OrganizationID: "org-1", OriginalName: "1023 А123ВС77"}
	created := false
	vehicles := &mocks.MockVehicleRepository{
		FindByOriginalNameFunc: func(ctx context.Context, orgID, name string) (*domain.Vehicle, error) {
			if orgID == "org-1" && name == "1023 А123ВС77" {
				return existing, nil
			}
			return nil, nil
		},
		CreateFunc: func(ctx context.Context, v *domain.Vehicle) error {
			created = true
			return nil
		},
	}
	svc := newTestService(vehicles, nil, nil, nil, nil)

	// Act
	v, warnings, err := svc.ResolveVehicle(context.Background(), "org-1", "1023 А123ВС77", ports.VehicleHints{})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil || v.ID != "veh-1" {
		t.Fatalf("expected existing vehicle, got %+v", v)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if created {
		t.Error("expected no row creation on exact match")
	}
}

func TestResolveVehicle_ExactNormalizedMatch(t *testing.T) {
	// Arrange: stored name differs only in spacing and plate case.
	existing := domain.Vehicle{ID: "veh-1", OrganizationID: "org-1", OriginalName: "Камаз  а 123 вс 77"}
	created := false
	vehicles := &mocks.MockVehicleRepository{
		ScanBatchFunc: func(ctx context.Context, orgID string, offset, limit int) ([]domain.Vehicle, error) {
			if offset == 0 {
				return []domain.Vehicle{existing}, nil
			}
			return nil, nil
		},
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Vehicle, error) {
			if id == existing.ID {
				v := existing
				return &v, nil
			}
			return nil, nil
		},
		CreateFunc: func(ctx context.Context, v *domain.Vehicle) error {
			created = true
			return nil
		},
	}
	svc := newTestService(vehicles, nil, nil, nil, nil)

	// Act
	v, _, err := svc.ResolveVehicle(context.Background(), "org-1", "Камаз А123ВС77", ports.VehicleHints{})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil || v.ID != "veh-1" {
		t.Fatalf("expected normalized match to veh-1, got %+v", v)
	}
	if created {
		t.Error("expected no row creation on normalized match")
	}
}

func TestResolveVehicle_FuzzyMerge(t *testing.T) {
	// Arrange: one substitution across a 23-rune name scores 96, above the
	// merge threshold.
	existing := domain.Vehicle{ID: "veh-1", OrganizationID: "org-1", OriginalName: "Автоцистерна КАМАЗ 5320"}
	created := false
	vehicles := &mocks.MockVehicleRepository{
		ScanBatchFunc: func(ctx context.Context, orgID string, offset, limit int) ([]domain.Vehicle, error) {
			if offset == 0 {
				return []domain.Vehicle{existing}, nil
			}
			return nil, nil
		},
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Vehicle, error) {
			v := existing
			return &v, nil
		},
		CreateFunc: func(ctx context.Context, v *domain.Vehicle) error {
			created = true
			return nil
		},
	}
	mq := mocks.NewMockMessageQueue()
	svc := newTestService(vehicles, nil, nil, nil, mq)

	// Act
	v, warnings, err := svc.ResolveVehicle(context.Background(), "org-1", "Автоцистерна КАМАЗ 5321", ports.VehicleHints{})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil || v.ID != "veh-1" {
		t.Fatalf("expected fuzzy merge to veh-1, got %+v", v)
	}
	if created {
		t.Error("expected no row creation on fuzzy merge")
	}
	if len(warnings) != 1 || warnings[0].Kind != domain.WarningMerged {
		t.Fatalf("expected a merged warning, got %v", warnings)
	}
	subjects := mq.PublishedSubjects()
	if len(subjects) != 1 || subjects[0] != SubjectMerged {
		t.Errorf("expected %q event, got %v", SubjectMerged, subjects)
	}
}

func TestResolveVehicle_WarnBandCreates(t *testing.T) {
	// Arrange: two substitutions score 91, inside the warn band. A new row
	// is created and the pair flagged for review.
	existing := domain.Vehicle{ID: "veh-1", OrganizationID: "org-1", OriginalName: "Автоцистерна КАМАЗ 5320"}
	var createdVehicle *domain.Vehicle
	vehicles := &mocks.MockVehicleRepository{
		ScanBatchFunc: func(ctx context.Context, orgID string, offset, limit int) ([]domain.Vehicle, error) {
			if offset == 0 {
				return []domain.Vehicle{existing}, nil
			}
			return nil, nil
		},
		CreateFunc: func(ctx context.Context, v *domain.Vehicle) error {
			createdVehicle = v
			return nil
		},
	}
	mq := mocks.NewMockMessageQueue()
	svc := newTestService(vehicles, nil, nil, nil, mq)

	// Act
	v, warnings, err := svc.ResolveVehicle(context.Background(), "org-1", "Автоцистерна КАМАЗ 5399", ports.VehicleHints{})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if createdVehicle == nil {
		t.Fatal("expected a new row in the warn band")
	}
	if v.ID != createdVehicle.ID {
		t.Errorf("expected returned vehicle to be the created one")
	}
	kinds := warningKinds(warnings)
	if !kinds[domain.WarningPossibleDuplicate] || !kinds[domain.WarningCreated] {
		t.Errorf("expected possible_duplicate and created warnings, got %v", warnings)
	}
	subjects := mq.PublishedSubjects()
	if len(subjects) != 1 || subjects[0] != SubjectDuplicateSuspected {
		t.Errorf("expected %q event, got %v", SubjectDuplicateSuspected, subjects)
	}
}

func TestResolveVehicle_NoMatchCreates(t *testing.T) {
	// Arrange
	var createdVehicle *domain.Vehicle
	vehicles := &mocks.MockVehicleRepository{
		CreateFunc: func(ctx context.Context, v *domain.Vehicle) error {
			createdVehicle = v
			return nil
		},
	}
	svc := newTestService(vehicles, nil, nil, nil, nil)

	// Act
	v, warnings, err := svc.ResolveVehicle(context.Background(), "org-1", "1023 А123ВС77", ports.VehicleHints{})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if createdVehicle == nil {
		t.Fatal("expected a new row")
	}
	if v.GarageNumber != "1023" {
		t.Errorf("expected garage number decomposed from name, got %q", v.GarageNumber)
	}
	if v.LicensePlate != "А123ВС77" {
		t.Errorf("expected license plate decomposed from name, got %q", v.LicensePlate)
	}
	if v.IsValidated != domain.ValidationStatusPending {
		t.Errorf("expected pending validation status, got %q", v.IsValidated)
	}
	if len(warnings) != 1 || warnings[0].Kind != domain.WarningCreated {
		t.Errorf("expected a single created warning, got %v", warnings)
	}
}

func TestResolveVehicle_CreateConflictRetriesLookup(t *testing.T) {
	// Arrange: the unique index rejects the insert because a concurrent
	// request created the row first; the retry must return the winner.
	winner := &domain.Vehicle{ID: "veh-winner", OrganizationID: "org-1", OriginalName: "1023 А123ВС77"}
	lookups := 0
	vehicles := &mocks.MockVehicleRepository{
		FindByOriginalNameFunc: func(ctx context.Context, orgID, name string) (*domain.Vehicle, error) {
			lookups++
			if lookups > 1 {
				return winner, nil
			}
			return nil, nil
		},
		CreateFunc: func(ctx context.Context, v *domain.Vehicle) error {
			return &domain.IntegrityConflictError{Resource: "vehicle", Key: v.OriginalName}
		},
	}
	svc := newTestService(vehicles, nil, nil, nil, nil)

	// Act
	v, _, err := svc.ResolveVehicle(context.Background(), "org-1", "1023 А123ВС77", ports.VehicleHints{})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil || v.ID != "veh-winner" {
		t.Fatalf("expected the concurrently created row, got %+v", v)
	}
}

func TestResolveVehicle_CreateConflictUnresolvedIsFatal(t *testing.T) {
	// Arrange: conflict fires but the retry still finds nothing. The
	// original conflict error must surface.
	vehicles := &mocks.MockVehicleRepository{
		CreateFunc: func(ctx context.Context, v *domain.Vehicle) error {
			return &domain.IntegrityConflictError{Resource: "vehicle", Key: v.OriginalName}
		},
	}
	svc := newTestService(vehicles, nil, nil, nil, nil)

	// Act
	_, _, err := svc.ResolveVehicle(context.Background(), "org-1", "1023 А123ВС77", ports.VehicleHints{})

	// Assert
	var ic *domain.IntegrityConflictError
	if !errors.As(err, &ic) {
		t.Fatalf("expected integrity conflict error, got %v", err)
	}
}

func TestResolveCard_EmptyNumber(t *testing.T) {
	// Arrange
	svc := newTestService(nil, nil, nil, nil, nil)

	// Act
	_, _, err := svc.ResolveCard(context.Background(), "org-1", " - _ ")

	// Assert
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveCard_NormalizedEquality(t *testing.T) {
	// Arrange: separators differ but the digits agree.
	existing := domain.FuelCard{ID: "card-1", OrganizationID: "org-1", CardNumber: "700583012233"}
	created := false
	cards := &mocks.MockFuelCardRepository{
		ScanBatchFunc: func(ctx context.Context, orgID string, offset, limit int) ([]domain.FuelCard, error) {
			if offset == 0 {
				return []domain.FuelCard{existing}, nil
			}
			return nil, nil
		},
		FindByIDFunc: func(ctx context.Context, id string) (*domain.FuelCard, error) {
			c := existing
			return &c, nil
		},
		CreateFunc: func(ctx context.Context, c *domain.FuelCard) error {
			created = true
			return nil
		},
	}
	svc := newTestService(nil, cards, nil, nil, nil)

	// Act
	c, warnings, err := svc.ResolveCard(context.Background(), "org-1", "7005-8301 2233")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c == nil || c.ID != "card-1" {
		t.Fatalf("expected normalized card match, got %+v", c)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if created {
		t.Error("expected no row creation")
	}
}

func TestResolveCard_NearMissIsNotMerged(t *testing.T) {
	// Arrange: one digit differs. On a 12-digit number that scores 92,
	// inside the card warn band but below the stricter card merge
	// threshold, so a distinct row must be created.
	existing := domain.FuelCard{ID: "card-1", OrganizationID: "org-1", CardNumber: "700583012233"}
	var createdCard *domain.FuelCard
	cards := &mocks.MockFuelCardRepository{
		ScanBatchFunc: func(ctx context.Context, orgID string, offset, limit int) ([]domain.FuelCard, error) {
			if offset == 0 {
				return []domain.FuelCard{existing}, nil
			}
			return nil, nil
		},
		CreateFunc: func(ctx context.Context, c *domain.FuelCard) error {
			createdCard = c
			return nil
		},
	}
	svc := newTestService(nil, cards, nil, nil, nil)

	// Act
	c, warnings, err := svc.ResolveCard(context.Background(), "org-1", "700583012234")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if createdCard == nil {
		t.Fatal("expected a distinct card row")
	}
	if c.ID == "card-1" {
		t.Error("near-identical card numbers must not merge")
	}
	kinds := warningKinds(warnings)
	if !kinds[domain.WarningPossibleDuplicate] {
		t.Errorf("expected a possible_duplicate warning, got %v", warnings)
	}
}

func TestResolveGasStation_EmbeddedNumberGuard(t *testing.T) {
	// Arrange: a single trailing digit differs so the fuzzy score alone
	// would merge, but the embedded numeric tokens disagree while the
	// extracted AZS numbers coincide. The candidate must be disqualified.
	existing := domain.GasStation{ID: "st-1", OrganizationID: "org-1", OriginalName: "АЗС 12 Лукойл корпус 345"}
	var createdStation *domain.GasStation
	stations := &mocks.MockGasStationRepository{
		ScanBatchFunc: func(ctx context.Context, orgID string, offset, limit int) ([]domain.GasStation, error) {
			if offset == 0 {
				return []domain.GasStation{existing}, nil
			}
			return nil, nil
		},
		CreateFunc: func(ctx context.Context, s *domain.GasStation) error {
			createdStation = s
			return nil
		},
	}
	svc := newTestService(nil, nil, stations, nil, nil)

	// Act
	st, _, err := svc.ResolveGasStation(context.Background(), "org-1", "АЗС 12 Лукойл корпус 346", ports.StationHints{})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if createdStation == nil {
		t.Fatal("expected a distinct station row")
	}
	if st.ID == "st-1" {
		t.Error("stations with different embedded numbers must not merge")
	}
	if st.AZSNumber != "12" {
		t.Errorf("expected AZS number extracted from the name, got %q", st.AZSNumber)
	}
}

func TestResolveGasStation_BackfillsCoordinates(t *testing.T) {
	// Arrange: the stored row has no coordinates, the hint does.
	existing := &domain.GasStation{ID: "st-1", OrganizationID: "org-1", OriginalName: "АЗС №17 Лукойл"}
	var saved *domain.GasStation
	stations := &mocks.MockGasStationRepository{
		FindByOriginalNameFunc: func(ctx context.Context, orgID, name string) (*domain.GasStation, error) {
			return existing, nil
		},
		SaveFunc: func(ctx context.Context, s *domain.GasStation) error {
			saved = s
			return nil
		},
	}
	svc := newTestService(nil, nil, stations, nil, nil)

	lat, lon := 55.7522, 37.6156

	// Act
	st, _, err := svc.ResolveGasStation(context.Background(), "org-1", "АЗС №17 Лукойл", ports.StationHints{Latitude: &lat, Longitude: &lon, Address: "Москва"})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected backfilled station to be saved")
	}
	if !st.HasCoordinates() || *st.Latitude != lat || *st.Longitude != lon {
		t.Errorf("expected coordinates backfilled, got %+v", st)
	}
	if st.Address != "Москва" {
		t.Errorf("expected address backfilled, got %q", st.Address)
	}
}

func TestResolveFuelType_CanonicalFamilies(t *testing.T) {
	// Arrange: stored АИ-95 under NormalizedName; the query uses a variant
	// spelling of the same grade.
	existing := domain.FuelType{ID: "ft-1", OrganizationID: "org-1", OriginalName: "АИ-95", NormalizedName: "АИ-95"}
	created := false
	fuelTypes := &mocks.MockFuelTypeRepository{
		ScanBatchFunc: func(ctx context.Context, orgID string, offset, limit int) ([]domain.FuelType, error) {
			if offset == 0 {
				return []domain.FuelType{existing}, nil
			}
			return nil, nil
		},
		FindByIDFunc: func(ctx context.Context, id string) (*domain.FuelType, error) {
			f := existing
			return &f, nil
		},
		CreateFunc: func(ctx context.Context, f *domain.FuelType) error {
			created = true
			return nil
		},
	}
	svc := newTestService(nil, nil, nil, fuelTypes, nil)

	// Act
	f, _, err := svc.ResolveFuelType(context.Background(), "org-1", "аи 95")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f == nil || f.ID != "ft-1" {
		t.Fatalf("expected canonical family match, got %+v", f)
	}
	if created {
		t.Error("expected no row creation for a known family")
	}
}

func TestResolveFuelType_UnknownLabelCreates(t *testing.T) {
	// Arrange
	var createdType *domain.FuelType
	fuelTypes := &mocks.MockFuelTypeRepository{
		CreateFunc: func(ctx context.Context, f *domain.FuelType) error {
			createdType = f
			return nil
		},
	}
	svc := newTestService(nil, nil, nil, fuelTypes, nil)

	// Act
	f, warnings, err := svc.ResolveFuelType(context.Background(), "org-1", "Керосин ТС-1")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if createdType == nil {
		t.Fatal("expected a new row for an unknown label")
	}
	if f.OriginalName != "Керосин ТС-1" {
		t.Errorf("expected original label preserved, got %q", f.OriginalName)
	}
	if len(warnings) != 1 || warnings[0].Kind != domain.WarningCreated {
		t.Errorf("expected a created warning, got %v", warnings)
	}
}

func warningKinds(warnings []domain.ResolutionWarning) map[domain.WarningKind]bool {
	kinds := make(map[domain.WarningKind]bool)
	for _, w := range warnings {
		kinds[w.Kind] = true
	}
	return kinds
}
