package secrets

import (
	"encoding/json"
	"testing"
)

// FuzzStoredCredentialUnmarshal feeds arbitrary JSON through the credential boundary.
// Decoding must either fail with ErrMalformedEnvelope or yield a credential that
// DecryptToken handles without panicking.
func FuzzStoredCredentialUnmarshal(f *testing.F) {
	env, err := Encrypt([]byte("seed"), []byte(testMasterKey), 1)
	if err != nil {
		f.Fatal(err)
	}
	envJSON, err := env.Marshal()
	if err != nil {
		f.Fatal(err)
	}

	f.Add([]byte(`"plain"`))
	f.Add([]byte(`{"encrypted":false,"value":"v"}`))
	f.Add([]byte(`{"encrypted":true,"data":` + string(envJSON) + `}`))
	f.Add(envJSON)
	f.Add([]byte(`{"ciphertext":"AA==","iterations":99999999}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var c StoredCredential
		if err := json.Unmarshal(data, &c); err != nil {
			return
		}
		if env, ok := c.Envelope(); ok && env.Iterations > 1000 {
			// Keep each run cheap; large counts are covered by Validate.
			return
		}
		DecryptToken(c, testMasterKey)
	})
}
