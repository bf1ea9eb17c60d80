package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/carejoa/carejoa-backend/internal/app/model"
	"gorm.io/datatypes"
)

const estimateDisclaimer = "※ 자동 생성된 추정 정보입니다. 정확한 정보는 시설에 문의해주세요."

type keywordRule struct {
	keywords []string
	label    string
}

// 시설명 키워드 → 전문분야
var specialtyRules = []keywordRule{
	{[]string{"재활", "rehabilitation"}, "재활"},
	{[]string{"치매", "dementia", "알츠하이머"}, "치매"},
	{[]string{"중풍", "뇌졸중", "stroke"}, "중풍"},
	{[]string{"암", "cancer", "종양"}, "암"},
	{[]string{"투석", "신장", "kidney"}, "신장투석"},
	{[]string{"감염", "격리"}, "감염관리"},
	{[]string{"호스피스", "hospice", "완화"}, "호스피스"},
	{[]string{"당뇨", "diabetes"}, "당뇨"},
}

// 시설명 키워드 → 입소유형
var admissionRules = []keywordRule{
	{[]string{"단기", "short"}, "단기입소"},
	{[]string{"야간", "night"}, "야간입소"},
	{[]string{"주말"}, "주말입소"},
	{[]string{"응급", "emergency"}, "응급입소"},
}

var defaultSpecialties = map[string][]string{
	model.FacilityTypeNursingHospital: {"재활", "치매"},
	model.FacilityTypeNursingHome:     {"치매"},
	model.FacilityTypeDayNightCare:    {"치매"},
}

var defaultAdmissionTypes = map[string][]string{
	model.FacilityTypeNursingHospital: {"정규입소", "응급입소"},
	model.FacilityTypeNursingHome:     {"정규입소", "단기입소"},
	model.FacilityTypeDayNightCare:    {"야간입소", "주말입소"},
	model.FacilityTypeHomeWelfare:     {"정규입소"},
}

type costProfile struct {
	monthly           float64
	depositMultiplier float64
}

var costProfiles = map[string]costProfile{
	model.FacilityTypeNursingHospital: {2500000, 1},
	model.FacilityTypeNursingHome:     {2000000, 2},
	model.FacilityTypeDayNightCare:    {1500000, 1.5},
	model.FacilityTypeHomeWelfare:     {1200000, 1},
}

var defaultCostProfile = costProfile{2000000, 2}

var sidoCostMultipliers = map[string]float64{
	"서울특별시":   1.3,
	"경기도":     1.2,
	"인천광역시":   1.1,
	"대전광역시":   1.1,
	"부산광역시":   1.1,
	"제주특별자치도": 1.15,
}

var (
	seoulPremiumDistricts     = []string{"강남구", "서초구", "송파구", "용산구", "마포구"}
	gyeonggiPremiumCities     = []string{"성남시", "용인시", "고양시", "과천시"}
	seoulPremiumMultiplier    = 1.2
	gyeonggiPremiumMultiplier = 1.15
)

func matchKeywords(name string, rules []keywordRule) []string {
	var labels []string
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				labels = append(labels, rule.label)
				break
			}
		}
	}
	return labels
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// EstimateSpecialties 이름 키워드가 없으면 시설 유형 기본값
func EstimateSpecialties(f *model.Facility) []string {
	specialties := matchKeywords(strings.ToLower(f.Name), specialtyRules)
	if len(specialties) == 0 {
		specialties = append(specialties, defaultSpecialties[f.FacilityType]...)
	}
	return dedupe(specialties)
}

// EstimateAdmissionTypes 이름 키워드 + 시설 유형 기본값
func EstimateAdmissionTypes(f *model.Facility) []string {
	types := matchKeywords(strings.ToLower(f.Name), admissionRules)
	types = append(types, defaultAdmissionTypes[f.FacilityType]...)
	return dedupe(types)
}

func roundToManwon(v float64) int64 {
	return int64(math.Round(v/10000) * 10000)
}

// EstimateCost 월 비용과 보증금 (만원 단위 반올림)
func EstimateCost(f *model.Facility) (monthly, deposit int64) {
	profile, ok := costProfiles[f.FacilityType]
	if !ok {
		profile = defaultCostProfile
	}

	cost := profile.monthly
	if m, ok := sidoCostMultipliers[f.Sido]; ok {
		cost *= m
	}
	switch f.Sido {
	case "서울특별시":
		if contains(seoulPremiumDistricts, f.Sigungu) {
			cost *= seoulPremiumMultiplier
		}
	case "경기도":
		for _, city := range gyeonggiPremiumCities {
			if strings.Contains(f.Sigungu, city) {
				cost *= gyeonggiPremiumMultiplier
				break
			}
		}
	}

	return roundToManwon(cost), roundToManwon(cost * profile.depositMultiplier)
}

// EstimateDetails 시설 기본 정보만으로 상세정보 초안을 만든다
func EstimateDetails(f *model.Facility) *model.FacilityDetails {
	specialties := EstimateSpecialties(f)
	admissionTypes := EstimateAdmissionTypes(f)
	monthly, deposit := EstimateCost(f)

	var notes []string
	if len(specialties) > 0 {
		notes = append(notes, "전문분야: "+strings.Join(specialties, ", "))
	}
	if len(admissionTypes) > 0 {
		notes = append(notes, "입소유형: "+strings.Join(admissionTypes, ", "))
	}
	notes = append(notes, fmt.Sprintf("추정 월비용: %d만원", monthly/10000), estimateDisclaimer)

	return &model.FacilityDetails{
		FacilityID:     f.ID,
		Specialties:    datatypes.JSONSlice[string](specialties),
		AdmissionTypes: datatypes.JSONSlice[string](admissionTypes),
		MonthlyCost:    &monthly,
		Deposit:        &deposit,
		Notes:          strings.Join(notes, " | "),
		UpdatedBy:      model.DetailsUpdatedByGenerator,
	}
}
