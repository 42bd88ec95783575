package export

import (
	"fmt"
	"strings"
)

// EMXEquations assembles the parameters, variables and code sections of the
// 20-sim submodel. Arrays are rendered with nf, rho and gamma with %f.
func (f *Formula) EMXEquations(nf NumberFormat) string {
	d, n := f.Dim(), f.NSV()
	var b strings.Builder

	b.WriteString("parameters\n")
	fmt.Fprintf(&b, "\tinteger nSV = %d;\n", n)
	fmt.Fprintf(&b, "\treal SV[%d,%d] = %s;\n", d, n, BlockLiteral(f.SV, nf))
	fmt.Fprintf(&b, "\treal svCoeff[%d] = %s;\n", n, ColumnLiteral(f.Coef, nf))
	fmt.Fprintf(&b, "\treal rho = %f;\n", f.Rho)
	fmt.Fprintf(&b, "\treal gamma = %f;\n\n", f.Gamma)
	fmt.Fprintf(&b, "\treal x_data_bias[%d] = %s;\n", d, ColumnLiteral(f.Input.Bias, nf))
	fmt.Fprintf(&b, "\treal x_data_scale[%d] = %s;\n", d, ColumnLiteral(f.Input.Scale, nf))
	fmt.Fprintf(&b, "\treal y_data_bias = %s;\n", nf.Format(f.Output.Bias))
	fmt.Fprintf(&b, "\treal y_data_scale = %s;\n\n", nf.Format(f.Output.Scale))

	b.WriteString("variables\n")
	fmt.Fprintf(&b, "\treal hidden x_scale[%d], y_scale;\n", d)
	b.WriteString("\tinteger i;\n\n")

	b.WriteString("code\n")
	b.WriteString("\tx_scale = (input - x_data_bias) ./ x_data_scale;\n")
	b.WriteString("\ty_scale = 0;\n")
	b.WriteString("\tfor i = 1 to nSV do\n")
	b.WriteString("\t\ty_scale = y_scale + svCoeff[i]*exp(-msum((SV[:,i] - x_scale).^2)*gamma);\n")
	b.WriteString("\tend;\n")
	b.WriteString("\ty_scale = y_scale - rho;\n")
	b.WriteString("\toutput = y_scale * y_data_scale + y_data_bias;")
	return b.String()
}
