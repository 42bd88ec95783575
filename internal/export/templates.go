package export

// Placeholder tokens of the 20-sim submodel template.
const (
	TokenPath      = "%%path%%"
	TokenTime      = "%%time%%"
	TokenModelName = "%%modelName%%"
	TokenNoInput   = "%%noInput%%"
	TokenEquations = "%%equations%%"
)

// DefaultTemplateName is where the 20-sim exporter looks for its template,
// relative to the working directory.
const DefaultTemplateName = "20Sim_tmp.tmp"

// DefaultEMXTemplate is written by "svmgen init". It wraps the generated
// equations in a 20-sim submodel with a vector input and a scalar output.
const DefaultEMXTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<Document>
 <Model version="4.8" date="%%time%%">
  <Sidops><![CDATA[model 100 100
 description '<Information>
 <Description>
    <Version>4.8</Version>
    <IsMainModel>1</IsMainModel>
    <LibraryPath>%%path%%</LibraryPath>
    <TimeStamp>%%time%%</TimeStamp>
 </Description>
</Information>'
 type %%modelName%%
  ports
   signal in input [%%noInput%%];
   signal out output;
  end;
  implementation eq
%%equations%%
  implementation_end;
]]></Sidops>
 </Model>
</Document>
`

// Placeholder tokens of the C source template.
const (
	TokenFuncName   = "%%funcName%%"
	TokenNSV        = "%%nSV%%"
	TokenNSVElem    = "%%nSVElem%%"
	TokenSVElem     = "%%SVElem%%"
	TokenSVCoeff    = "%%svCoeff%%"
	TokenXDataBias  = "%%x_data_bias%%"
	TokenXDataScale = "%%x_data_scale%%"
	TokenRho        = "%%rho%%"
	TokenGamma      = "%%gamma%%"
	TokenYDataBias  = "%%y_data_bias%%"
	TokenYDataScale = "%%y_data_scale%%"
)

// DefaultCTemplate is used by the C exporter unless a template path is set.
// SV is stored column-major as an nSV x D matrix: SV[i + nSV*j] is feature j
// of support vector i.
const DefaultCTemplate = `/*
 * %%funcName%%: RBF support vector regression, generated by svmgen.
 */
#include <math.h>

double %%funcName%%(const double x[%%noInput%%])
{
  static const double x_data_bias[%%noInput%%] = { %%x_data_bias%% };
  static const double x_data_scale[%%noInput%%] = { %%x_data_scale%% };
  static const double SV[%%nSVElem%%] = { %%SVElem%% };
  static const double svCoeff[%%nSV%%] = { %%svCoeff%% };
  double x_scale[%%noInput%%];
  double y_scale;
  double dist;
  double d;
  int i;
  int j;

  for (j = 0; j < %%noInput%%; j++) {
    x_scale[j] = (x[j] - x_data_bias[j]) / x_data_scale[j];
  }

  y_scale = 0.0;
  for (i = 0; i < %%nSV%%; i++) {
    dist = 0.0;
    for (j = 0; j < %%noInput%%; j++) {
      d = SV[i + %%nSV%% * j] - x_scale[j];
      dist += d * d;
    }
    y_scale += svCoeff[i] * exp(-dist * %%gamma%%);
  }

  y_scale -= %%rho%%;
  return y_scale * %%y_data_scale%% + %%y_data_bias%%;
}
`
