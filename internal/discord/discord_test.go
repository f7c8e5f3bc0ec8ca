package discord

import "testing"

func TestFindChannel_PrefersID(t *testing.T) {
	channels := []Channel{
		{ID: "1", Name: "common-hall", Type: ChannelTypeText},
		{ID: "2", Name: "announcements", Type: ChannelTypeText},
	}
	got := FindChannel(channels, "2", ChannelTypeText, "common-hall")
	if got == nil || got.ID != "2" {
		t.Fatalf("expected channel 2, got %+v", got)
	}
}

func TestFindChannel_FallsBackToNameSubstring(t *testing.T) {
	channels := []Channel{
		{ID: "1", Name: "🗻 Common-Hall", Type: ChannelTypeVoice},
		{ID: "2", Name: "🗻 common-hall", Type: ChannelTypeText},
	}
	got := FindChannel(channels, "missing", ChannelTypeText, "common hall", "common-hall")
	if got == nil || got.ID != "2" {
		t.Fatalf("expected channel 2, got %+v", got)
	}
	voice := FindChannel(channels, "", ChannelTypeVoice, "COMMON-HALL")
	if voice == nil || voice.ID != "1" {
		t.Fatalf("expected voice channel 1, got %+v", voice)
	}
}

func TestFindChannel_IDWithWrongTypeIsIgnored(t *testing.T) {
	channels := []Channel{{ID: "1", Name: "general", Type: ChannelTypeVoice}}
	if got := FindChannel(channels, "1", ChannelTypeText); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestMember_DisplayName(t *testing.T) {
	m := Member{Username: "user"}
	if m.DisplayName() != "user" {
		t.Fatalf("unexpected display name: %s", m.DisplayName())
	}
	m.GlobalName = "Global"
	if m.DisplayName() != "Global" {
		t.Fatalf("unexpected display name: %s", m.DisplayName())
	}
	m.Nick = "Nick"
	if m.DisplayName() != "Nick" {
		t.Fatalf("unexpected display name: %s", m.DisplayName())
	}
}

func TestMember_HighestRole(t *testing.T) {
	m := Member{Roles: []Role{{Name: "a", Position: 1}, {Name: "b", Position: 5}, {Name: "c", Position: 3}}}
	r, ok := m.HighestRole()
	if !ok || r.Name != "b" {
		t.Fatalf("expected role b, got %+v", r)
	}
	if _, ok := (Member{}).HighestRole(); ok {
		t.Fatal("expected no role for empty member")
	}
}

func TestMember_HasRoleNamed(t *testing.T) {
	m := Member{Roles: []Role{{Name: "Rookies"}}}
	if !m.HasRoleNamed("rookies") {
		t.Fatal("expected case-insensitive match")
	}
	if m.HasRoleNamed("") {
		t.Fatal("expected empty name to never match")
	}
}

func TestNameMatches(t *testing.T) {
	m := Member{Username: "GeoNithin", Nick: "Geo"}
	if !NameMatches(m, []string{"geonithin"}) {
		t.Fatal("expected username match")
	}
	if !NameMatches(m, []string{"geo"}) {
		t.Fatal("expected display name match")
	}
	if NameMatches(m, []string{"someone"}) {
		t.Fatal("expected no match")
	}
}

func TestMember_RoleName(t *testing.T) {
	if got := (Member{}).RoleName(); got != "Member" {
		t.Fatalf("RoleName() = %q, want Member", got)
	}
	m := Member{Roles: []Role{{Name: "@everyone"}}}
	if got := m.RoleName(); got != "Member" {
		t.Fatalf("RoleName() = %q, want Member", got)
	}
	m = Member{Roles: []Role{{Name: "Rookies", Position: 1}, {Name: "Mentor", Position: 4}}}
	if got := m.RoleName(); got != "Mentor" {
		t.Fatalf("RoleName() = %q, want Mentor", got)
	}
}
