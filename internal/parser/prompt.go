package parser

import "coverscan/internal/domain"

// BuildRecordPrompt returns the extraction prompt for one page of an
// insurance application form. The provider must return the partial record
// schema directly; every leaf is a field object carrying its own confidence.
func BuildRecordPrompt(formType domain.FormType) string {
	return `You are an insurance application intake assistant. Analyze the provided page scan of a personal ` + string(formType) + ` insurance application form and extract the data it shows into the JSON structure below.

IMPORTANT INSTRUCTIONS:
- This is ONE page of a multi-page application. Extract ONLY what this page actually shows. For any field this page does not show, use {"value": null, "confidence": "low"}. Leave collections this page does not cover as empty arrays.
- Every leaf field is an object: {"value": <string or null>, "confidence": "high"|"medium"|"low", "raw_text": "<the exact text as printed, when it needed interpretation>"}. Omit "raw_text" when the value is a clean read.
- Confidence reflects legibility and interpretation: "high" for clearly printed values, "medium" for readable handwriting or minor interpretation, "low" for guesses from poor scans.
- All values are strings. Normalize dates to YYYY-MM-DD. Keep identifiers (VIN, license number, policy number) exactly as printed, uppercase.
- Do NOT invent cross-reference identifiers: always use null for "vehicle_ref". For "driver_ref" use "__owner__" when the form marks the applicant as the involved driver, "__spouse__" for the spouse, otherwise null. Put the driver's name as printed in "driver_name".
- boolean-like answers (security system, swimming pool) use {"value": true|false|null, ...}.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation — just the raw JSON object.

The JSON object must follow this schema (field objects abbreviated to "F"):
{
  "applicant": {
    "first_name": F, "last_name": F, "date_of_birth": F, "marital_status": F,
    "phone": F, "email": F, "street": F, "city": F, "state": F, "zip": F
  },
  "co_applicant": {
    "first_name": F, "last_name": F, "date_of_birth": F
  },
  "residence": {
    "year_built": F, "construction_type": F, "roof_type": F, "square_feet": F,
    "distance_to_hydrant": F, "security_system": F, "swimming_pool": F
  },
  "policy": {
    "effective_date": F, "prior_carrier": F, "prior_policy_number": F,
    "years_with_prior_carrier": F
  },
  "collections": {
    "vehicles": [
      {"year": F, "make": F, "model": F, "vin": F, "usage": F, "annual_mileage": F}
    ],
    "drivers": [
      {"first_name": F, "last_name": F, "date_of_birth": F, "license_number": F, "relationship": F}
    ],
    "deductibles": [
      {"vehicle_ref": F, "comprehensive": F, "collision": F}
    ],
    "lienholders": [
      {"vehicle_ref": F, "name": F, "address": F}
    ],
    "accidents": [
      {"driver_ref": F, "driver_name": F, "date": F, "description": F, "amount": F}
    ],
    "tickets": [
      {"driver_ref": F, "driver_name": F, "date": F, "violation": F}
    ],
    "claims": [
      {"date": F, "claim_type": F, "amount": F, "description": F}
    ],
    "scheduled_items": [
      {"category": F, "description": F, "value": F}
    ]
  }
}

List every row this page shows in its table sections (vehicles, drivers, accident history, prior claims, scheduled property). Do not skip, summarize, or combine rows.`
}
