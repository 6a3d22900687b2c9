package synthesis

import (
	"testing"

	"github.com/sweetpotato0/odialingua/confusable"
)

func claimSet(claims []Claim) map[Claim]bool {
	set := make(map[Claim]bool, len(claims))
	for _, c := range claims {
		set[c] = true
	}
	return set
}

func TestScanClaims(t *testing.T) {
	text := "Mohan Charan Majhi of the BJP was sworn in on 12 June 2024 with 78 MLAs."
	set := claimSet(ScanClaims(text, confusable.DefaultRegistry()))

	for _, want := range []Claim{
		{Kind: ClaimName, Value: "Mohan Charan Majhi"},
		{Kind: ClaimDate, Value: "12 June 2024"},
		{Kind: ClaimYear, Value: "2024"},
		{Kind: ClaimNumber, Value: "78"},
		{Kind: ClaimParty, Value: "BJP"},
	} {
		if !set[want] {
			t.Errorf("missing claim %+v", want)
		}
	}
}

func TestScanClaimsTrimsSentenceLead(t *testing.T) {
	set := claimSet(ScanClaims("The Chief Minister spoke. According To Reports nothing changed.", nil))
	for claim := range set {
		if claim.Kind == ClaimName && claim.Value == "The Chief Minister" {
			t.Errorf("sentence lead kept in name claim: %+v", claim)
		}
	}
}

func TestScanClaimsNoFalseNameFromDate(t *testing.T) {
	claims := ScanClaims("It happened on 5 March 2021.", nil)
	for _, c := range claims {
		if c.Kind == ClaimName {
			t.Errorf("date produced name claim %+v", c)
		}
	}
}
