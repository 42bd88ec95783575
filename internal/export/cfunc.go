package export

import (
	"strconv"
	"strings"
)

// CReplacer maps every C template token to its rendered value. Numbers use
// %.17g so the C function carries the full float64 parameters.
func (f *Formula) CReplacer(name string) *strings.Replacer {
	nf := ExactFormat
	d, n := f.Dim(), f.NSV()
	return strings.NewReplacer(
		TokenFuncName, name,
		TokenNoInput, strconv.Itoa(d),
		TokenNSVElem, strconv.Itoa(d*n),
		TokenNSV, strconv.Itoa(n),
		TokenSVElem, FlatList(FlatMatrix(f.SV), nf),
		TokenSVCoeff, FlatList(f.Coef, nf),
		TokenXDataBias, FlatList(f.Input.Bias, nf),
		TokenXDataScale, FlatList(f.Input.Scale, nf),
		TokenRho, nf.Format(f.Rho),
		TokenGamma, nf.Format(f.Gamma),
		TokenYDataBias, nf.Format(f.Output.Bias),
		TokenYDataScale, nf.Format(f.Output.Scale),
	)
}

var cTokens = []string{
	TokenFuncName, TokenNoInput, TokenNSVElem, TokenNSV, TokenSVElem, TokenSVCoeff,
	TokenXDataBias, TokenXDataScale, TokenRho, TokenGamma, TokenYDataBias, TokenYDataScale,
}
