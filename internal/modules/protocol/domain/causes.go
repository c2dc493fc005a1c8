package domain

import (
	"fmt"
	"math"
	"strings"
)

type Cause string

const (
	CauseHypovolemia   Cause = "hypovolemia"
	CauseHypoxia       Cause = "hypoxia"
	CauseAcidosis      Cause = "acidosis"
	CausePotassium     Cause = "potassium"
	CauseHypothermia   Cause = "hypothermia"
	CauseTamponade     Cause = "tamponade"
	CauseTensionPneumo Cause = "tension_pneumothorax"
	CauseToxins        Cause = "toxins"
	CauseThrombosis    Cause = "thrombosis"
	CauseTrauma        Cause = "trauma"
)

// ReversibleCauses lists the 5H and 5T in mnemonic order.
var ReversibleCauses = []Cause{
	CauseHypovolemia, CauseHypoxia, CauseAcidosis, CausePotassium, CauseHypothermia,
	CauseTamponade, CauseTensionPneumo, CauseToxins, CauseThrombosis, CauseTrauma,
}

const ReversibleCausesSummary = "5H: hypovolemia, hypoxia, hydrogen ion (acidosis), hypo/hyperkalemia, hypothermia. " +
	"5T: tamponade, tension pneumothorax, toxins, thrombosis, trauma."

var causeLabels = map[Cause]string{
	CauseHypovolemia:   "Hypovolemia",
	CauseHypoxia:       "Hypoxia",
	CauseAcidosis:      "Hydrogen ion (acidosis)",
	CausePotassium:     "Hypo/hyperkalemia",
	CauseHypothermia:   "Hypothermia",
	CauseTamponade:     "Cardiac tamponade",
	CauseTensionPneumo: "Tension pneumothorax",
	CauseToxins:        "Toxins",
	CauseThrombosis:    "Thrombosis (PE/MI)",
	CauseTrauma:        "Trauma",
}

func (c Cause) Label() string { return causeLabels[c] }

func ParseCause(raw string) (Cause, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	for _, c := range ReversibleCauses {
		if string(c) == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown reversible cause %q", raw)
}

// Treatment returns weight-aware bedside guidance for one cause. Unknown
// weight falls back to 70 kg.
func Treatment(c Cause, patient Patient) string {
	w := patient.weightOr(70)
	ped := patient.Pediatric() || (patient.AgeYears > 0 && patient.AgeYears < 18)
	elderly := patient.AgeYears >= 65
	mEq := int(math.Round(w))

	switch c {
	case CauseHypovolemia:
		if ped {
			return fmt.Sprintf("Saline 0.9%% %d ml (20 ml/kg) over 5-10 min; reassess after each bolus, max 60 ml/kg; consider red cells if bleeding.", int(math.Round(w*20)))
		}
		tail := "consider up to 30 ml/kg."
		if elderly {
			tail = "watch for volume overload."
		}
		return "Crystalloid 500-1000 ml through large-bore access; reassess after each bolus; massive transfusion protocol if bleeding; " + tail
	case CauseHypoxia:
		if ped {
			return fmt.Sprintf("Confirm airway and tube position; 100%% O2 (SpO2 94-99%%); ventilate 12-20/min at %d-%d ml; continuous capnography.", int(math.Round(w*6)), int(math.Round(w*8)))
		}
		return "Confirm tube position and bilateral breath sounds; 100% O2; 10 breaths/min, avoid hyperventilation; EtCO2 35-40 mmHg."
	case CauseAcidosis:
		return fmt.Sprintf("Ventilate adequately; sodium bicarbonate %d mEq EV only with documented pH < 7.1, severe hyperkalemia or tricyclic overdose.", mEq)
	case CausePotassium:
		insulin := "10 U"
		if ped {
			insulin = fmt.Sprintf("%.1f U (0.1 U/kg)", w*0.1)
		}
		return fmt.Sprintf("Urgent blood gas. High K+: calcium gluconate 10%% 10-20 ml, regular insulin %s + dextrose 25 g, bicarbonate %d mEq if acidotic. Low K+: KCl 10-20 mEq diluted.", insulin, mEq)
	case CauseHypothermia:
		return "Below 30 C prolonged CPR is mandatory; warm fluids 40-42 C and active rewarming; do not stop before core temperature exceeds 32 C."
	case CauseTamponade:
		bolus := 1000
		if ped {
			bolus = int(math.Round(w * 20))
		}
		return fmt.Sprintf("Immediate pericardiocentesis; crystalloid %d ml bolus while preparing; thoracotomy if it fails.", bolus)
	case CauseTensionPneumo:
		needle := "14-16G"
		if ped {
			needle = "18-20G"
		}
		return fmt.Sprintf("Do not wait for imaging: needle decompression (%s) 2nd intercostal space midclavicular, then chest drain.", needle)
	case CauseThrombosis:
		rtpa := "consult specialist"
		if !ped {
			rtpa = fmt.Sprintf("%d mg (1 mg/kg, max 100 mg)", int(math.Min(100, math.Round(w))))
		}
		return fmt.Sprintf("PE: high-quality CPR 60-90 min, rtPA %s. MI: emergency angiography if available within 120 min.", rtpa)
	case CauseToxins:
		charcoal := 50
		if ped {
			charcoal = int(math.Round(w))
		}
		return fmt.Sprintf("Identify the agent: naloxone 0.4-2 mg (opioids), atropine 1-2 mg (organophosphates), glucagon 5-10 mg (beta/calcium blockers); activated charcoal %d g if ingestion under 1 h.", charcoal)
	case CauseTrauma:
		return "Control external bleeding (pressure, tourniquet); resuscitative thoracotomy for penetrating chest trauma under 10 min of arrest; decompress both sides if needed."
	}
	return "no treatment guidance for this cause"
}
