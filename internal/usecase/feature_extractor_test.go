package usecase

import (
	"errors"
	"testing"

	"github.com/sai-aps/quotematch/internal/domain"
)

func TestFromText(t *testing.T) {
	e := NewFeatureExtractor(false)

	t.Run("parses a full spec line", func(t *testing.T) {
		features, err := e.FromText("90 in high, 40 wide, 60 deep, ABB Emax 6.2, fixed, front and rear")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := domain.FeatureRecord{
			Height:      "90",
			Width:       "40",
			Depth:       "60",
			BreakerType: "ABB SACE Emax 6.2",
			Mount:       domain.MountFixed,
			Access:      domain.AccessFrontAndRear,
		}
		if features != want {
			t.Errorf("features = %+v, want %+v", features, want)
		}
	})

	t.Run("parses compact HxWxD notation", func(t *testing.T) {
		features, err := e.FromText("90H x 40W x 60D, Emax 6.2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if features.Height != "90" || features.Width != "40" || features.Depth != "60" {
			t.Errorf("dimensions = %s/%s/%s, want 90/40/60", features.Height, features.Width, features.Depth)
		}
		if features.BreakerType != "ABB SACE Emax 6.2" {
			t.Errorf("BreakerType = %s, want ABB SACE Emax 6.2", features.BreakerType)
		}
	})

	t.Run("breaker aliases normalize to canonical forms", func(t *testing.T) {
		cases := []struct {
			input string
			want  string
		}{
			{"main breaker E6.2 drawout", "ABB SACE Emax 6.2"},
			{"emax 4.2 frame", "ABB SACE Emax 4.2"},
			{"E2.2 feeder", "ABB SACE Emax 2.2"},
			{"tmax molded case", "ABB SACE Tmax"},
			{"square d powerpact", "Square D"},
		}
		for _, tc := range cases {
			features, err := e.FromText(tc.input)
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.input, err)
			}
			if features.BreakerType != tc.want {
				t.Errorf("FromText(%q).BreakerType = %s, want %s", tc.input, features.BreakerType, tc.want)
			}
		}
	})

	t.Run("quantity read only when number precedes breaker keyword", func(t *testing.T) {
		features, _ := e.FromText("2 x TMAX feeders")
		if features.BreakerQuantity != 2 {
			t.Errorf("BreakerQuantity = %d, want 2", features.BreakerQuantity)
		}

		features, _ = e.FromText("3 EMAX 2.2")
		if features.BreakerQuantity != 3 {
			t.Errorf("BreakerQuantity = %d, want 3", features.BreakerQuantity)
		}

		// Counts phrased after the keyword stay undetected, by design of the
		// original extraction rules.
		features, _ = e.FromText("Emax 6.2 qty 2")
		if features.BreakerQuantity != 0 {
			t.Errorf("BreakerQuantity = %d, want 0 for trailing qty", features.BreakerQuantity)
		}
	})

	t.Run("access and mount rules apply in listed order", func(t *testing.T) {
		features, _ := e.FromText("rear access required")
		if features.Access != domain.AccessFrontAndRear {
			t.Errorf("Access = %s, want Front and rear", features.Access)
		}

		features, _ = e.FromText("front access only")
		if features.Access != domain.AccessFrontOnly {
			t.Errorf("Access = %s, want Front only", features.Access)
		}

		// Both mount keywords present: drawout is listed first and wins.
		features, _ = e.FromText("drawout or fixed, front only")
		if features.Mount != domain.MountDrawout {
			t.Errorf("Mount = %s, want Drawout", features.Mount)
		}
	})

	t.Run("unconstrained fields stay empty", func(t *testing.T) {
		features, _ := e.FromText("switchgear quote please")
		if !features.IsEmpty() {
			t.Errorf("features = %+v, want empty", features)
		}
	})

	t.Run("rejects blank input", func(t *testing.T) {
		_, err := e.FromText("   ")
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})
}

func TestFromQuote(t *testing.T) {
	e := NewFeatureExtractor(false)

	t.Run("rejects nil quote", func(t *testing.T) {
		_, err := e.FromQuote(nil)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("uses first section only", func(t *testing.T) {
		quote := &domain.QuoteExtraction{
			Sections: []domain.QuoteSection{
				{
					Identifier: "Section 101",
					Dimensions: domain.SectionDimensions{Height: "90\"", Width: "40 in", Depth: "60"},
					MainCircuitBreaker: &domain.BreakerSpec{
						Type: "ABB SACE Emax 6.2", Quantity: 4,
					},
				},
				{
					Identifier: "Section 102",
					Dimensions: domain.SectionDimensions{Height: "78", Width: "42", Depth: "33"},
				},
			},
			SpecialConstructionRequirements: []string{"fixed mount", "front and rear access"},
		}

		features, err := e.FromQuote(quote)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if features.Height != "90" || features.Width != "40" || features.Depth != "60" {
			t.Errorf("dimensions = %s/%s/%s, want 90/40/60", features.Height, features.Width, features.Depth)
		}
		// A main breaker always means quantity 1, regardless of what the
		// extraction claims.
		if features.BreakerQuantity != 1 {
			t.Errorf("BreakerQuantity = %d, want 1", features.BreakerQuantity)
		}
		if features.Mount != domain.MountFixed || features.Access != domain.AccessFrontAndRear {
			t.Errorf("Mount/Access = %s/%s, want Fixed/Front and rear", features.Mount, features.Access)
		}
	})

	t.Run("falls back to breakers list with its length as quantity", func(t *testing.T) {
		quote := &domain.QuoteExtraction{
			Sections: []domain.QuoteSection{{
				Breakers: []domain.BreakerSpec{
					{Type: "ABB SACE Emax 2.2"},
					{Type: "ABB SACE Emax 2.2"},
					{Type: "ABB SACE Emax 2.2"},
				},
			}},
		}

		features, _ := e.FromQuote(quote)
		if features.BreakerType != "ABB SACE Emax 2.2" {
			t.Errorf("BreakerType = %s, want ABB SACE Emax 2.2", features.BreakerType)
		}
		if features.BreakerQuantity != 3 {
			t.Errorf("BreakerQuantity = %d, want 3", features.BreakerQuantity)
		}
	})

	t.Run("dimension extraction takes the first digit run", func(t *testing.T) {
		// "Section 101, 90 inches" yields 101, not 90. Known quirk of the
		// extraction order, preserved pending product review.
		quote := &domain.QuoteExtraction{
			Sections: []domain.QuoteSection{{
				Dimensions: domain.SectionDimensions{Height: "Section 101, 90 inches"},
			}},
		}

		features, _ := e.FromQuote(quote)
		if features.Height != "101" {
			t.Errorf("Height = %s, want 101 (first digit run)", features.Height)
		}
	})

	t.Run("fractional dimensions truncate to leading digits", func(t *testing.T) {
		quote := &domain.QuoteExtraction{
			Sections: []domain.QuoteSection{{
				Dimensions: domain.SectionDimensions{Height: "90.5 in"},
			}},
		}

		features, _ := e.FromQuote(quote)
		if features.Height != "90" {
			t.Errorf("Height = %s, want 90", features.Height)
		}
	})

	t.Run("empty sections leave dimensions unconstrained", func(t *testing.T) {
		quote := &domain.QuoteExtraction{
			SpecialConstructionRequirements: []string{"drawout"},
		}

		features, _ := e.FromQuote(quote)
		if features.Height != "" || features.BreakerType != "" {
			t.Errorf("features = %+v, want only mount set", features)
		}
		if features.Mount != domain.MountDrawout {
			t.Errorf("Mount = %s, want Drawout", features.Mount)
		}
	})
}

func TestNormalizeBreakerType(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"emax 6.2", "ABB SACE Emax 6.2"},
		{"ABB E2.2 main", "ABB SACE Emax 2.2"},
		{"Tmax XT5", "ABB SACE Tmax"},
		{"SQUARE D POWERPACT", "Square D"},
		{"Siemens WL", "Siemens WL"}, // unrecognized passes through
	}
	for _, tc := range cases {
		if got := NormalizeBreakerType(tc.input); got != tc.want {
			t.Errorf("NormalizeBreakerType(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
