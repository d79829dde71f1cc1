package seniority

import (
	"sort"

	"github.com/sells-group/exec-enrich/internal/model"
)

// entry maps a title phrase to its tier, authority and decision-maker flag.
type entry struct {
	tier      model.SeniorityTier
	authority int
	dm        bool
}

// titles is the fixed seniority lexicon. More specific phrases win over
// shorter ones by longest match.
var titles = map[string]entry{
	// tier 1: owners and the board
	"chief executive officer":  {model.Tier1, 10, true},
	"chief executive":          {model.Tier1, 10, true},
	"ceo":                      {model.Tier1, 10, true},
	"managing director":        {model.Tier1, 10, true},
	"md":                       {model.Tier1, 10, true},
	"owner":                    {model.Tier1, 10, true},
	"co-owner":                 {model.Tier1, 10, true},
	"business owner":           {model.Tier1, 10, true},
	"proprietor":               {model.Tier1, 10, true},
	"founder":                  {model.Tier1, 10, true},
	"co-founder":               {model.Tier1, 10, true},
	"founding partner":         {model.Tier1, 10, true},
	"chairman":                 {model.Tier1, 9, true},
	"chairwoman":               {model.Tier1, 9, true},
	"chairperson":              {model.Tier1, 9, true},
	"chair":                    {model.Tier1, 9, true},
	"president":                {model.Tier1, 9, true},
	"principal":                {model.Tier1, 9, true},
	"senior partner":           {model.Tier1, 9, true},
	"managing partner":         {model.Tier1, 9, true},
	"partner":                  {model.Tier1, 8, true},
	"director":                 {model.Tier1, 8, true},
	"executive director":       {model.Tier1, 9, true},
	"company director":         {model.Tier1, 9, true},
	"chief operating officer":  {model.Tier1, 9, true},
	"coo":                      {model.Tier1, 9, true},
	"chief financial officer":  {model.Tier1, 9, true},
	"cfo":                      {model.Tier1, 9, true},
	"chief technology officer": {model.Tier1, 9, true},
	"cto":                      {model.Tier1, 9, true},
	"chief marketing officer":  {model.Tier1, 9, true},
	"cmo":                      {model.Tier1, 9, true},

	// tier 2: department heads and senior management
	"head of":              {model.Tier2, 7, true},
	"director of":          {model.Tier2, 7, true},
	"finance director":     {model.Tier2, 7, true},
	"sales director":       {model.Tier2, 7, true},
	"operations director":  {model.Tier2, 7, true},
	"technical director":   {model.Tier2, 7, true},
	"commercial director":  {model.Tier2, 7, true},
	"general manager":      {model.Tier2, 7, true},
	"operations manager":   {model.Tier2, 6, true},
	"office manager":       {model.Tier2, 6, true},
	"sales manager":        {model.Tier2, 6, true},
	"finance manager":      {model.Tier2, 6, true},
	"marketing manager":    {model.Tier2, 6, true},
	"practice manager":     {model.Tier2, 6, true},
	"project manager":      {model.Tier2, 5, true},
	"manager":              {model.Tier2, 5, true},
	"vice president":       {model.Tier2, 7, true},
	"vp":                   {model.Tier2, 7, true},
	"company secretary":    {model.Tier2, 6, true},
	"secretary":            {model.Tier2, 5, true},
	"financial controller": {model.Tier2, 6, true},
	"controller":           {model.Tier2, 5, true},

	// tier 3: staff roles
	"supervisor":    {model.Tier3, 4, false},
	"team leader":   {model.Tier3, 4, true},
	"team lead":     {model.Tier3, 4, true},
	"lead":          {model.Tier3, 4, true},
	"coordinator":   {model.Tier3, 3, false},
	"specialist":    {model.Tier3, 3, false},
	"assistant":     {model.Tier3, 2, false},
	"administrator": {model.Tier3, 3, false},
	"officer":       {model.Tier3, 3, false},
	"consultant":    {model.Tier3, 3, false},
	"engineer":      {model.Tier3, 3, false},
	"accountant":    {model.Tier3, 3, false},
	"receptionist":  {model.Tier3, 2, false},
	"associate":     {model.Tier3, 3, false},
	"executive":     {model.Tier3, 3, false},
	"head":          {model.Tier3, 5, true},
}

// contextKeywords strengthen a classification when they co-occur with the
// name.
var contextKeywords = []string{
	"board", "leadership", "management", "team", "company", "business", "founded",
	"established", "responsible", "oversees", "leads", "runs", "heads", "appointed",
	"directors", "senior", "executive", "ownership",
}

// dmKeywords promote a tier_3 title to decision-maker.
var dmKeywords = []string{"head", "lead", "principal", "department manager", "senior"}

// Phrases returns every title phrase in the lexicon, sorted.
func Phrases() []string {
	out := make([]string, 0, len(titles))
	for p := range titles {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
