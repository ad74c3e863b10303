package claim

import (
	"encoding/json"

	"geoverify/domain/core"
)

// MarshalJSON keeps infinite SNR values encodable
func (a SNRAnalysis) MarshalJSON() ([]byte, error) {
	type alias SNRAnalysis
	return json.Marshal(struct {
		alias
		SNRDb any `json:"snr_db"`
	}{alias(a), core.JSONFloat(a.SNRDb)})
}

// UnmarshalJSON accepts snr_db as a number or as "+Inf", "-Inf" or "NaN"
func (a *SNRAnalysis) UnmarshalJSON(data []byte) error {
	type alias SNRAnalysis
	aux := struct {
		*alias
		SNRDb json.RawMessage `json:"snr_db"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v, err := core.ParseJSONFloat(aux.SNRDb)
	if err != nil {
		return err
	}
	a.SNRDb = v
	return nil
}
