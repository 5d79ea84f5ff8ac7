package domain

import "strings"

// VocabularyVersion changes whenever a slot is added to or removed from the
// exclusive or additive sets below.
const VocabularyVersion = 3

type Slot string

// Known slots. Extractors may emit any snake_case slot beyond these; such
// slots are dynamic.
const (
	SlotName           Slot = "name"
	SlotEmployer       Slot = "employer"
	SlotTitle          Slot = "title"
	SlotOccupation     Slot = "occupation"
	SlotLocation       Slot = "location"
	SlotCoffee         Slot = "coffee"
	SlotHobby          Slot = "hobby"
	SlotFavoriteColor  Slot = "favorite_color"
	SlotFavoriteFood   Slot = "favorite_food"
	SlotPet            Slot = "pet"
	SlotSchool         Slot = "school"
	SlotUndergrad      Slot = "undergrad_school"
	SlotMasters        Slot = "masters_school"
	SlotGraduationYear Slot = "graduation_year"
	SlotProject        Slot = "project"
	SlotAge            Slot = "age"
	SlotBirthday       Slot = "birthday"
	SlotBirthYear      Slot = "birth_year"
	SlotHeight         Slot = "height"
	SlotWeight         Slot = "weight"
	SlotDiet           Slot = "diet"
	SlotRelationship   Slot = "relationship"
	SlotSalary         Slot = "salary"
	SlotBudget         Slot = "budget"
	SlotDatabase       Slot = "database"
	SlotOS             Slot = "os"
	SlotEditor         Slot = "editor"
	SlotFramework      Slot = "framework"
	SlotCloud          Slot = "cloud"
	SlotAPIURL         Slot = "api_url"

	SlotSkill               Slot = "skill"
	SlotLanguage            Slot = "language"
	SlotTool                Slot = "tool"
	SlotLibrary             Slot = "library"
	SlotDependency          Slot = "dependency"
	SlotFeature             Slot = "feature"
	SlotRequirement         Slot = "requirement"
	SlotProgrammingLanguage Slot = "programming_language"
)

type SlotKind int

const (
	SlotDynamic SlotKind = iota
	SlotExclusive
	SlotAdditive
)

func (k SlotKind) String() string {
	switch k {
	case SlotExclusive:
		return "exclusive"
	case SlotAdditive:
		return "additive"
	default:
		return "dynamic"
	}
}

var exclusiveSlots = map[Slot]bool{
	SlotEmployer: true, SlotLocation: true, SlotName: true, SlotTitle: true,
	SlotOccupation: true, SlotCoffee: true, SlotHobby: true, SlotFavoriteColor: true,
	SlotFavoriteFood: true, SlotPet: true, SlotSchool: true, SlotUndergrad: true,
	SlotMasters: true, SlotGraduationYear: true, SlotProject: true,
	SlotAge: true, SlotBirthday: true, SlotBirthYear: true, SlotHeight: true,
	SlotWeight: true, SlotDiet: true, SlotRelationship: true,
	SlotSalary: true, SlotBudget: true,
	SlotDatabase: true, SlotOS: true, SlotEditor: true, SlotFramework: true,
	SlotCloud: true, SlotAPIURL: true,
}

var additiveSlots = map[Slot]bool{
	SlotHobby: true, SlotSkill: true, SlotLanguage: true, SlotTool: true,
	SlotLibrary: true, SlotDependency: true, SlotFeature: true,
	SlotRequirement: true, SlotProgrammingLanguage: true,
}

// SlotKindOf classifies a slot. The additive set is consulted first, so a
// slot listed in both sets (hobby) is additive.
func SlotKindOf(slot string) SlotKind {
	s := Slot(strings.ToLower(slot))
	if additiveSlots[s] {
		return SlotAdditive
	}
	if exclusiveSlots[s] {
		return SlotExclusive
	}
	return SlotDynamic
}

var historicalPrefixes = []string{"previous_", "prior_", "former_"}

// CanonicalSlot strips a historical prefix such as previous_ from a slot.
// ok is false when the slot carries no such prefix.
func CanonicalSlot(slot string) (string, bool) {
	for _, p := range historicalPrefixes {
		if strings.HasPrefix(slot, p) {
			return slot[len(p):], true
		}
	}
	return "", false
}
